package models

import (
	"encoding/json"
	"time"

	"github.com/appetiteclub/portal/pkg/enums/orderstatus"
)

type Order struct {
	ID              string     `json:"id"`
	Customer        Ref        `json:"customer"`
	Restaurant      Ref        `json:"restaurant"`
	Items           []CartItem `json:"items"`
	TotalPrice      float64    `json:"totalPrice"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"paymentStatus"`
	DeliveryAddress string     `json:"deliveryAddress"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	if err := json.Unmarshal(b, (*plain)(o)); err != nil {
		return err
	}
	return fillID(b, &o.ID)
}

func (o *Order) IsFinal() bool {
	return o != nil && (o.Status == orderstatus.Statuses.Completed.Name || o.Status == orderstatus.Statuses.Cancelled.Name)
}

// OrderLine is one line of a checkout request.
type OrderLine struct {
	DishID         string   `json:"dish"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
	Price          float64  `json:"price"`
}

// PlaceOrderRequest submits the order together with its payment.
type PlaceOrderRequest struct {
	Restaurant      string        `json:"restaurant"`
	Items           []OrderLine   `json:"items"`
	TotalPrice      float64       `json:"totalPrice"`
	DeliveryAddress string        `json:"deliveryAddress"`
	Payment         PaymentUpdate `json:"payment"`
}
