package models

import (
	"bytes"
	"encoding/json"
)

// fillID copies a Mongo-style "_id" into id when the payload has no "id".
func fillID(b []byte, id *string) error {
	if *id != "" {
		return nil
	}
	var aux struct {
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*id = aux.MongoID
	return nil
}

// Ref points at another record. The backend sends either the bare id or the
// populated document; both decode into a Ref. It always encodes as the id.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) IsZero() bool {
	return r.ID == ""
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var doc struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = doc.ID
	if r.ID == "" {
		r.ID = doc.MongoID
	}
	r.Name = doc.Name
	if r.Name == "" {
		r.Name = doc.Username
	}
	return nil
}
