package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/models"
)

// Backend is the cart and checkout API.
type Backend interface {
	Get(ctx context.Context) (*models.Cart, error)
	AddItem(ctx context.Context, req models.AddItemRequest) error
	UpdateQuantity(ctx context.Context, dishID string, quantity int) error
	RemoveItem(ctx context.Context, dishID string) error
	PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error)
}

type DataAccess struct {
	client *apiclient.Client
}

func NewDataAccess(client *apiclient.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) Get(ctx context.Context) (*models.Cart, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("cart client not configured")
	}

	resp, err := da.client.List(ctx, "cart")
	if err != nil {
		return nil, err
	}

	var c models.Cart
	if err := apiclient.Decode(resp, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (da *DataAccess) AddItem(ctx context.Context, req models.AddItemRequest) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("cart client not configured")
	}
	_, err := da.client.Create(ctx, "cart/items", req)
	return err
}

func (da *DataAccess) UpdateQuantity(ctx context.Context, dishID string, quantity int) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("cart client not configured")
	}
	if dishID == "" {
		return fmt.Errorf("missing dish id")
	}
	_, err := da.client.Update(ctx, "cart/items", dishID, models.QuantityUpdate{Quantity: quantity})
	return err
}

func (da *DataAccess) RemoveItem(ctx context.Context, dishID string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("cart client not configured")
	}
	if dishID == "" {
		return fmt.Errorf("missing dish id")
	}
	_, err := da.client.Delete(ctx, "cart/items", dishID)
	return err
}

// placeOrderResource accepts {"order": {...}} as well as a bare order.
type placeOrderResource struct {
	Order *models.Order `json:"order"`
}

func (da *DataAccess) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}

	resp, err := da.client.Request(ctx, http.MethodPost, "orders", req)
	if err != nil {
		return nil, err
	}

	var res placeOrderResource
	if err := apiclient.Decode(resp, &res); err != nil {
		return nil, err
	}
	if res.Order != nil {
		return res.Order, nil
	}

	var o models.Order
	if err := apiclient.Decode(resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
