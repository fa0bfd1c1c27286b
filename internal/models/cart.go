package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartItem is one dish selection. Dish is nil when the backend could not
// resolve the referenced dish, for example after it was deleted.
type CartItem struct {
	DishID         string   `json:"dishId"`
	Dish           *Dish    `json:"dish,omitempty"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
	LineTotal      float64  `json:"lineTotal"`
}

func (c *CartItem) UnmarshalJSON(b []byte) error {
	var aux struct {
		DishID         string          `json:"dishId"`
		Dish           json.RawMessage `json:"dish"`
		Quantity       int             `json:"quantity"`
		Customizations []string        `json:"customizations"`
		LineTotal      float64         `json:"lineTotal"`
		Price          float64         `json:"price"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*c = CartItem{
		DishID:         aux.DishID,
		Quantity:       aux.Quantity,
		Customizations: aux.Customizations,
		LineTotal:      aux.LineTotal,
	}
	if c.LineTotal == 0 {
		c.LineTotal = aux.Price
	}

	raw := bytes.TrimSpace(aux.Dish)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		if c.DishID == "" {
			c.DishID = id
		}
	default:
		var d Dish
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		c.Dish = &d
		if c.DishID == "" {
			c.DishID = d.ID
		}
	}
	return nil
}

// Resolvable reports whether the line still points at an existing dish.
func (c CartItem) Resolvable() bool {
	return c.Dish != nil && c.Dish.ID != ""
}

type Cart struct {
	Customer   Ref        `json:"customer"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for dishID, or nil.
func (c *Cart) Item(dishID string) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].DishID == dishID {
			return &c.Items[i]
		}
	}
	return nil
}

// Recompute refreshes line totals from dish prices and sums the cart total.
// Lines without a resolved dish keep the total the backend reported.
func (c *Cart) Recompute() {
	if c == nil {
		return
	}
	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		line := decimal.NewFromFloat(item.LineTotal)
		if item.Resolvable() {
			line = decimal.NewFromFloat(item.Dish.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		line = line.Round(2)
		item.LineTotal = line.InexactFloat64()
		total = total.Add(line)
	}
	c.TotalPrice = total.Round(2).InexactFloat64()
}

// AddItemRequest is the body for adding a dish to the cart.
type AddItemRequest struct {
	DishID         string   `json:"dishId"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
}

type QuantityUpdate struct {
	Quantity int `json:"quantity"`
}
