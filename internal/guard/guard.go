// Package guard decides whether a session may see a route. Every role based
// redirect in the portal goes through the table defined here.
package guard

import (
	"strings"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/pkg/enums/role"
)

const SignInPath = "/signin"

type Decision int

const (
	Render Decision = iota
	Placeholder
	RedirectLogin
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Placeholder:
		return "placeholder"
	case RedirectLogin:
		return "redirect-login"
	case Forbidden:
		return "forbidden"
	default:
		return "render"
	}
}

// State is what the guard needs to know about a session.
type State interface {
	Loading() bool
	IsAuthenticated() bool
	User() *models.User
}

// Rule restricts every path under Prefix to Roles.
type Rule struct {
	Prefix string
	Roles  []role.Role
}

// Table maps roles to their home route and route prefixes to allowed roles.
type Table struct {
	Homes map[string]string
	Rules []Rule
}

// Default is the portal's route table.
var Default = Table{
	Homes: map[string]string{
		role.Roles.Admin.Name:    "/admin",
		role.Roles.Staff.Name:    "/staff",
		role.Roles.Customer.Name: "/customer",
	},
	Rules: []Rule{
		{Prefix: "/admin", Roles: []role.Role{role.Roles.Admin}},
		{Prefix: "/staff", Roles: []role.Role{role.Roles.Staff, role.Roles.Admin}},
		{Prefix: "/customer", Roles: []role.Role{role.Roles.Customer}},
		{Prefix: "/account", Roles: role.All},
	},
}

// Rule returns the most specific rule covering path, or nil for public paths.
func (t Table) Rule(path string) *Rule {
	var best *Rule
	for i := range t.Rules {
		r := &t.Rules[i]
		if !matches(r.Prefix, path) {
			continue
		}
		if best == nil || len(r.Prefix) > len(best.Prefix) {
			best = r
		}
	}
	return best
}

func matches(prefix, path string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/")
}

// Decide applies the table to one request path.
func (t Table) Decide(state State, path string) Decision {
	rule := t.Rule(path)
	if rule == nil {
		return Render
	}
	if state == nil {
		return RedirectLogin
	}
	if state.Loading() {
		return Placeholder
	}
	if !state.IsAuthenticated() {
		return RedirectLogin
	}
	if !state.User().HasRole(rule.Roles...) {
		return Forbidden
	}
	return Render
}

// HomeFor is the post-login destination for a role.
func (t Table) HomeFor(roleName string) (string, error) {
	r := role.ByName(roleName)
	if r == nil {
		return "", apperr.New(apperr.Authorization, "unauthorized role")
	}
	home, ok := t.Homes[r.Name]
	if !ok {
		return "", apperr.New(apperr.Authorization, "unauthorized role")
	}
	return home, nil
}

func Decide(state State, path string) Decision {
	return Default.Decide(state, path)
}

func HomeFor(roleName string) (string, error) {
	return Default.HomeFor(roleName)
}
