package models

import "encoding/json"

type Dish struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Image       string  `json:"image,omitempty"`
	Available   bool    `json:"available"`
	Restaurant  *Ref    `json:"restaurant,omitempty"`
}

func (d *Dish) UnmarshalJSON(b []byte) error {
	type plain Dish
	if err := json.Unmarshal(b, (*plain)(d)); err != nil {
		return err
	}
	return fillID(b, &d.ID)
}

type Restaurant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Cuisine string `json:"cuisine,omitempty"`
}

func (r *Restaurant) UnmarshalJSON(b []byte) error {
	type plain Restaurant
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	return fillID(b, &r.ID)
}
