package reservation

import (
	"context"
	"fmt"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/models"
)

// Backend is the reservation and payment API the controller drives.
type Backend interface {
	Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	ListMine(ctx context.Context) ([]models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	UpdatePayment(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error)
}

// createResource accepts both {"reservation": {...}, "payment": {...}} and a
// bare reservation document.
type createResource struct {
	Reservation *models.Reservation `json:"reservation"`
	Payment     *models.Payment     `json:"payment"`
}

// DataAccess implements Backend over the REST API.
type DataAccess struct {
	client *apiclient.Client
}

func NewDataAccess(client *apiclient.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("reservation client not configured")
	}

	resp, err := da.client.Create(ctx, "reservations", r)
	if err != nil {
		return nil, err
	}

	var res createResource
	if err := apiclient.Decode(resp, &res); err != nil {
		return nil, err
	}

	created := res.Reservation
	if created == nil {
		created = &models.Reservation{}
		if err := apiclient.Decode(resp, created); err != nil {
			return nil, err
		}
	}
	if created.Payment == nil && res.Payment != nil {
		created.Payment = res.Payment
	}

	return created, nil
}

func (da *DataAccess) Get(ctx context.Context, id string) (*models.Reservation, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("reservation client not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("missing reservation id")
	}

	resp, err := da.client.Get(ctx, "reservations", id)
	if err != nil {
		return nil, err
	}

	var r models.Reservation
	if err := apiclient.Decode(resp, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (da *DataAccess) ListMine(ctx context.Context) ([]models.Reservation, error) {
	return da.list(ctx, "reservations/mine")
}

func (da *DataAccess) ListAll(ctx context.Context) ([]models.Reservation, error) {
	return da.list(ctx, "reservations")
}

func (da *DataAccess) list(ctx context.Context, path string) ([]models.Reservation, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("reservation client not configured")
	}

	resp, err := da.client.List(ctx, path)
	if err != nil {
		return nil, err
	}

	var out []models.Reservation
	if err := apiclient.Decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (da *DataAccess) UpdateStatus(ctx context.Context, id, status string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("reservation client not configured")
	}
	if id == "" {
		return fmt.Errorf("missing reservation id")
	}

	path := fmt.Sprintf("reservations/%s/status", id)
	_, err := da.client.Request(ctx, "PUT", path, models.StatusUpdate{Status: status})
	return err
}

func (da *DataAccess) Delete(ctx context.Context, id string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("reservation client not configured")
	}
	_, err := da.client.Delete(ctx, "reservations", id)
	return err
}

func (da *DataAccess) UpdatePayment(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("payment client not configured")
	}
	if paymentID == "" {
		return nil, fmt.Errorf("missing payment id")
	}

	resp, err := da.client.Update(ctx, "payments", paymentID, update)
	if err != nil {
		return nil, err
	}

	var p models.Payment
	if err := apiclient.Decode(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
