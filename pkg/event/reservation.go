package event

import "time"

const (
	ReservationsTopic           = "portal.reservations"
	EventReservationCreated     = "reservation.created"
	EventReservationConfirmed   = "reservation.confirmed"
	EventReservationCancelled   = "reservation.cancelled"
	EventReservationPaymentPaid = "reservation.payment.paid"
)

// ReservationEvent is published after a reservation transition succeeds at the backend.
type ReservationEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	ReservationID  string    `json:"reservation_id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	Type           string    `json:"type,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PaymentStatus  string    `json:"payment_status,omitempty"`
	Actor          string    `json:"actor,omitempty"`
}
