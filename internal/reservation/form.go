package reservation

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/validation"
)

// Form is the customer reservation form.
type Form struct {
	RestaurantID    string `json:"restaurant,omitempty"`
	ServiceID       string `json:"service,omitempty"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	Type            string `json:"type" validate:"required,oneof=Dine-in Takeaway Delivery"`
	DeliveryAddress string `json:"deliveryAddress,omitempty" validate:"required_if=Type Delivery"`
	ContactNumber   string `json:"contactNumber,omitempty" validate:"required_if=Type Delivery"`
	SpecialRequests string `json:"specialRequests,omitempty" validate:"max=500"`
}

func (f Form) trimmed() Form {
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Type = strings.TrimSpace(f.Type)
	f.DeliveryAddress = strings.TrimSpace(f.DeliveryAddress)
	f.ContactNumber = strings.TrimSpace(f.ContactNumber)
	return f
}

// ValidateForm returns one message per invalid field.
func ValidateForm(ctx context.Context, v *validator.Validate, f Form) []string {
	return validation.Check(v, f.trimmed())
}

func (f Form) input(customerID string) models.ReservationInput {
	f = f.trimmed()
	return models.ReservationInput{
		CustomerID:      customerID,
		RestaurantID:    f.RestaurantID,
		ServiceID:       f.ServiceID,
		Date:            f.Date,
		Time:            f.Time,
		Type:            f.Type,
		DeliveryAddress: f.DeliveryAddress,
		ContactNumber:   f.ContactNumber,
		SpecialRequests: f.SpecialRequests,
	}
}

// PaymentForm is what the payment dialog collects.
type PaymentForm struct {
	Method string              `json:"method"`
	Card   *models.CardDetails `json:"card,omitempty"`
}
