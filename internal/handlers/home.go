package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/policy"
)

type HomeHandler struct {
	Log *zap.SugaredLogger
}

func NewHomeHandler(log *zap.SugaredLogger) *HomeHandler {
	return &HomeHandler{Log: log}
}

// Index is the landing page: a navigation hub whose links the layout
// filters by the principal's permissions.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if httpx.WantsJSON(r) {
		u, ok := policy.PrincipalFrom(r.Context())
		if !ok {
			httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": true, "username": u.Username, "role": u.Role})
		return
	}
	render(w, r, h.Log, "index.html", nil)
}
