package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/appetiteclub/portal/pkg/enums/role"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token,omitempty"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	if err := json.Unmarshal(b, (*plain)(u)); err != nil {
		return err
	}
	return fillID(b, &u.ID)
}

// Validate checks the fields a restored user must carry. A known role is
// normalised to its canonical name.
func (u *User) Validate() error {
	if err := u.ValidateIdentity(); err != nil {
		return err
	}
	if !u.NormaliseRole() {
		return errors.New("unknown role")
	}
	return nil
}

// ValidateIdentity checks id and email only. Login uses it so a role the
// portal has no area for surfaces at the redirect instead.
func (u *User) ValidateIdentity() error {
	if u == nil {
		return errors.New("user is nil")
	}
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user email is required")
	}
	return nil
}

// NormaliseRole rewrites a known role to its canonical name and reports
// whether the role was known.
func (u *User) NormaliseRole() bool {
	r := role.ByName(u.Role)
	if r == nil {
		return false
	}
	u.Role = r.Name
	return true
}

func (u *User) HasRole(roles ...role.Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if strings.EqualFold(u.Role, r.Name) {
			return true
		}
	}
	return false
}

// Registration is the payload for creating a customer account.
type Registration struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}
