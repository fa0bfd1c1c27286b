package guard

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StateFunc resolves the session state of a request.
type StateFunc func(r *http.Request) State

// Middleware enforces t on every request that reaches it.
func (t Table) Middleware(stateFor StateFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch t.Decide(stateFor(r), r.URL.Path) {
			case Placeholder:
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case RedirectLogin:
				if wantsHTML(r) {
					http.Redirect(w, r, SignInPath, http.StatusSeeOther)
					return
				}
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "authentication required",
					"redirect": SignInPath,
				})
			case Forbidden:
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "unauthorized role"})
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
