package portal

import (
	"encoding/json"
	"net/http"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/notify"
)

type response struct {
	Data          any                   `json:"data,omitempty"`
	Error         string                `json:"error,omitempty"`
	Redirect      string                `json:"redirect,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// StatusFor maps an error kind to the status the portal answers with.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Authentication:
		return http.StatusUnauthorized
	case apperr.Authorization:
		return http.StatusForbidden
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Network:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) ok(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, response{Data: data, Notifications: drain(r)})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.log(r).Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, response{Error: apperr.MessageOf(err), Notifications: drain(r)})
}

// decode reads a JSON body into dest; a malformed body is a validation error.
func decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	return nil
}

func drain(r *http.Request) []notify.Notification {
	c := clientFrom(r.Context())
	if c == nil {
		return nil
	}
	return c.notices.Drain()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
