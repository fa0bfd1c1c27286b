package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/models"
)

type Backend interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type DataAccess struct {
	client *apiclient.Client
}

func NewDataAccess(client *apiclient.Client) *DataAccess {
	return &DataAccess{client: client}
}

// List returns the orders visible to the caller. The backend scopes the
// result by the bearer token's role.
func (da *DataAccess) List(ctx context.Context) ([]models.Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}

	resp, err := da.client.List(ctx, "orders")
	if err != nil {
		return nil, err
	}

	var out []models.Order
	if err := apiclient.Decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (da *DataAccess) Get(ctx context.Context, id string) (*models.Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("missing order id")
	}

	resp, err := da.client.Get(ctx, "orders", id)
	if err != nil {
		return nil, err
	}

	var o models.Order
	if err := apiclient.Decode(resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (da *DataAccess) UpdateStatus(ctx context.Context, id, status string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if id == "" {
		return fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("orders/%s/status", id)
	_, err := da.client.Request(ctx, http.MethodPut, path, models.StatusUpdate{Status: status})
	return err
}
