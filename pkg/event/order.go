package event

import "time"

const (
	OrdersTopic             = "portal.orders"
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderCancelled     = "order.cancelled"
)

// OrderEvent is published after an order is placed or changes status.
type OrderEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	RestaurantID   string    `json:"restaurant_id,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	TotalPrice     float64   `json:"total_price,omitempty"`
	Actor          string    `json:"actor,omitempty"`
}
