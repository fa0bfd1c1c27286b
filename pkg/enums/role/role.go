package role

import "strings"

// Role is the access level carried by an authenticated user.
type Role struct {
	Name string
}

func (r Role) Code() string {
	return r.Name
}

func (r Role) Label() string {
	return r.Name
}

func (r Role) IsZero() bool {
	return r.Name == ""
}

type Enum struct {
	Customer Role
	Staff    Role
	Admin    Role
}

var Roles = Enum{
	Customer: Role{Name: "Customer"},
	Staff:    Role{Name: "Staff"},
	Admin:    Role{Name: "Admin"},
}

var All = []Role{
	Roles.Customer,
	Roles.Staff,
	Roles.Admin,
}

// ByName returns the role for a given name, or nil if not found.
// Matching ignores case because backends are inconsistent about it.
func ByName(name string) *Role {
	name = strings.TrimSpace(name)
	for _, r := range All {
		if strings.EqualFold(r.Name, name) {
			return &r
		}
	}
	return nil
}
