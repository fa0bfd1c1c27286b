// Package payment checks the details collected by the mocked payment step.
package payment

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/validation"
	"github.com/appetiteclub/portal/pkg/enums/paymentmethod"
	"github.com/appetiteclub/portal/pkg/enums/paymentstatus"
)

const msgCardDetails = "Please fill in all card details"

// Validate checks the method and, for card payments, the card fields.
// It returns the canonical method.
func Validate(v *validator.Validate, method string, card *models.CardDetails) (paymentmethod.Method, error) {
	m := paymentmethod.ByName(strings.TrimSpace(method))
	if m == nil {
		return paymentmethod.Method{}, apperr.New(apperr.Validation, "Please select a payment method")
	}
	if !m.RequiresCard {
		return *m, nil
	}
	if card == nil {
		return *m, apperr.New(apperr.Validation, msgCardDetails)
	}

	normalized := *card
	normalized.Holder = strings.TrimSpace(normalized.Holder)
	normalized.Number = strings.ReplaceAll(strings.TrimSpace(normalized.Number), " ", "")
	normalized.Expiry = strings.TrimSpace(normalized.Expiry)
	normalized.CVV = strings.TrimSpace(normalized.CVV)

	if msgs := validation.Check(v, normalized); len(msgs) > 0 {
		return *m, apperr.New(apperr.Validation, msgCardDetails+": "+strings.Join(msgs, "; "))
	}
	return *m, nil
}

// Settle builds the update that marks a payment as paid.
func Settle(amount float64, method paymentmethod.Method) models.PaymentUpdate {
	return models.PaymentUpdate{
		Amount: amount,
		Method: method.Name,
		Status: paymentstatus.Statuses.Paid.Name,
	}
}
