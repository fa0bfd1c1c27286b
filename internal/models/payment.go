package models

import (
	"encoding/json"
	"time"
)

type Payment struct {
	ID          string    `json:"id"`
	Customer    Ref       `json:"customer"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method,omitempty"`
	Status      string    `json:"status"`
	Reservation *Ref      `json:"reservation,omitempty"`
	Order       *Ref      `json:"order,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (p *Payment) UnmarshalJSON(b []byte) error {
	type plain Payment
	if err := json.Unmarshal(b, (*plain)(p)); err != nil {
		return err
	}
	return fillID(b, &p.ID)
}

// PaymentUpdate is sent to settle a payment.
type PaymentUpdate struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Status string  `json:"status"`
}

// CardDetails are collected for card payments. They are validated locally
// and never stored.
type CardDetails struct {
	Holder string `json:"cardHolder" validate:"required"`
	Number string `json:"cardNumber" validate:"required,min=12,max=19,numeric"`
	Expiry string `json:"expiry" validate:"required,datetime=01/06"`
	CVV    string `json:"cvv" validate:"required,min=3,max=4,numeric"`
}
