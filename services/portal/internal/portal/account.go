package portal

import (
	"net/http"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates the client and answers with the role's home route.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())

	var req signInRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := c.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	home, err := h.guard.HomeFor(user.Role)
	if err != nil {
		// Signed in with a role the portal has no area for.
		_ = c.session.Logout(r.Context())
		h.fail(w, r, err)
		return
	}

	h.log(r).Info("user signed in", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, response{Data: publicUser(user), Redirect: home, Notifications: drain(r)})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	if err := c.session.Logout(r.Context()); err != nil {
		h.log(r).Error("cannot clear stored session", "error", err)
	}
	writeJSON(w, http.StatusOK, response{Redirect: "/", Notifications: drain(r)})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())

	var reg models.Registration
	if err := decode(r, &reg); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := c.session.Register(r.Context(), reg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: publicUser(user), Redirect: "/signin"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := clientFrom(r.Context()).session.User()
	if user == nil {
		h.fail(w, r, apperr.New(apperr.Authentication, "authentication required"))
		return
	}
	home, _ := h.guard.HomeFor(user.Role)
	writeJSON(w, http.StatusOK, response{Data: publicUser(user), Redirect: home})
}

// publicUser strips the bearer token before a user leaves the portal.
func publicUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Token = ""
	return &cp
}
