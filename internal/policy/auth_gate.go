package policy

import (
	"net/http"

	"github.com/diewo77/partner-admin/internal/gate"
	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
)

// AccessDeniedNotice is the user-visible message shown on a 403.
const AccessDeniedNotice = "Доступ запрещён"

// AuthGate is the central authorization point for the router. It wraps the
// role gate and exposes middleware in the shapes the route table needs.
type AuthGate struct {
	Gate *gate.Gate[*models.User]
}

// NewAuthGate creates the configured authorization gate.
func NewAuthGate() *AuthGate {
	return &AuthGate{Gate: NewRoleGate()}
}

// Can checks a permission for the request's principal without writing a response.
// Used by templates to show or hide controls.
func (ag *AuthGate) Can(r *http.Request, action gate.Action, resourceType string) bool {
	u, _ := PrincipalFrom(r.Context())
	return ag.Gate.Can(r.Context(), u, action, resourceType)
}

// RequireAuth redirects anonymous requests to /login (or 401 for JSON clients).
func (ag *AuthGate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require returns middleware enforcing resource:action for the principal.
// Denied requests get a 403 with the access-denied notice and reach no
// handler logic, so no queries beyond identity resolution are executed.
func (ag *AuthGate) Require(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := PrincipalFrom(r.Context())
			if !ok {
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if err := ag.Gate.Authorize(r.Context(), u, action, resourceType); err != nil {
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
					return
				}
				http.Error(w, AccessDeniedNotice, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
