package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/appetiteclub/portal/pkg/enums/paymentstatus"
	"github.com/appetiteclub/portal/pkg/enums/reservationstatus"
	"github.com/appetiteclub/portal/pkg/enums/reservationtype"
)

type Reservation struct {
	ID              string    `json:"id"`
	Customer        Ref       `json:"customer"`
	Restaurant      *Ref      `json:"restaurant,omitempty"`
	Service         *Ref      `json:"service,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Type            string    `json:"type"`
	DeliveryAddress *string   `json:"deliveryAddress"`
	ContactNumber   *string   `json:"contactNumber"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	Payment         *Payment  `json:"payment,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (r *Reservation) UnmarshalJSON(b []byte) error {
	type plain Reservation
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	if err := fillID(b, &r.ID); err != nil {
		return err
	}
	if r.Type != reservationtype.Types.Delivery.Name {
		r.DeliveryAddress = nil
		r.ContactNumber = nil
	}
	return nil
}

// ReservationInput carries what a customer fills in on the reservation form.
type ReservationInput struct {
	CustomerID      string
	RestaurantID    string
	ServiceID       string
	Date            string
	Time            string
	Type            string
	DeliveryAddress string
	ContactNumber   string
	SpecialRequests string
}

// NewReservation builds a Pending reservation from form input. Delivery
// address and contact are kept only for Delivery reservations.
func NewReservation(in ReservationInput) *Reservation {
	r := &Reservation{
		Customer:        Ref{ID: in.CustomerID},
		Date:            strings.TrimSpace(in.Date),
		Time:            strings.TrimSpace(in.Time),
		Type:            in.Type,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		Status:          reservationstatus.Statuses.Pending.Name,
		PaymentStatus:   paymentstatus.Statuses.Pending.Name,
	}
	if in.RestaurantID != "" {
		r.Restaurant = &Ref{ID: in.RestaurantID}
	}
	if in.ServiceID != "" {
		r.Service = &Ref{ID: in.ServiceID}
	}
	if r.IsDelivery() {
		addr := strings.TrimSpace(in.DeliveryAddress)
		contact := strings.TrimSpace(in.ContactNumber)
		r.DeliveryAddress = &addr
		r.ContactNumber = &contact
	}
	return r
}

func (r *Reservation) IsDelivery() bool {
	return r != nil && r.Type == reservationtype.Types.Delivery.Name
}

func (r *Reservation) IsCancelled() bool {
	return r != nil && r.Status == reservationstatus.Statuses.Cancelled.Name
}

func (r *Reservation) IsConfirmed() bool {
	return r != nil && r.Status == reservationstatus.Statuses.Confirmed.Name
}

func (r *Reservation) IsPaid() bool {
	return r != nil && r.PaymentStatus == paymentstatus.Statuses.Paid.Name
}

// DisplayStatus is the status shown to the customer. A paid reservation that
// has not been cancelled reads as Confirmed.
func (r *Reservation) DisplayStatus() string {
	if r == nil {
		return ""
	}
	if r.IsCancelled() {
		return r.Status
	}
	if r.IsPaid() {
		return reservationstatus.Statuses.Confirmed.Name
	}
	return r.Status
}

// StatusUpdate is the body of a reservation status change.
type StatusUpdate struct {
	Status string `json:"status"`
}
