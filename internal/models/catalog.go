package models

import (
	"encoding/json"
	"time"
)

type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Image       string  `json:"image,omitempty"`
}

func (s *Service) UnmarshalJSON(b []byte) error {
	type plain Service
	if err := json.Unmarshal(b, (*plain)(s)); err != nil {
		return err
	}
	return fillID(b, &s.ID)
}

type Offer struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Discount    float64 `json:"discount"`
	ValidUntil  string  `json:"validUntil,omitempty"`
	Image       string  `json:"image,omitempty"`
}

func (o *Offer) UnmarshalJSON(b []byte) error {
	type plain Offer
	if err := json.Unmarshal(b, (*plain)(o)); err != nil {
		return err
	}
	return fillID(b, &o.ID)
}

type Facility struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

func (f *Facility) UnmarshalJSON(b []byte) error {
	type plain Facility
	if err := json.Unmarshal(b, (*plain)(f)); err != nil {
		return err
	}
	return fillID(b, &f.ID)
}

type GalleryImage struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"imageUrl"`
	Category string `json:"category,omitempty"`
}

func (g *GalleryImage) UnmarshalJSON(b []byte) error {
	type plain GalleryImage
	if err := json.Unmarshal(b, (*plain)(g)); err != nil {
		return err
	}
	return fillID(b, &g.ID)
}

const (
	QueryOpen     = "Open"
	QueryResolved = "Resolved"
)

// Query is a contact message sent by a visitor and answered by staff.
type Query struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message" validate:"required,min=5"`
	Status    string    `json:"status,omitempty"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (q *Query) UnmarshalJSON(b []byte) error {
	type plain Query
	if err := json.Unmarshal(b, (*plain)(q)); err != nil {
		return err
	}
	return fillID(b, &q.ID)
}

// ReportRow is one opaque row of a backend report.
type ReportRow map[string]any
