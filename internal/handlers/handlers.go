// Package handlers contains one controller per resource. Handlers are
// dual-mode: HTML render for browsers, JSON for clients that prefer it.
// Successful mutations redirect with 303 See Other.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/view"
)

func render(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, r, name, data); err != nil {
		// details go to the log only, never to the client
		log.Errorw("template render failed", "template", name, "error", err)
		if _, werr := w.Write([]byte("Внутренняя ошибка сервера")); werr != nil {
			_ = werr
		}
	}
}

func formUint(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(r.FormValue(name), 10, 64)
	return uint(n)
}

func formFloat(r *http.Request, name string) float64 {
	f, _ := strconv.ParseFloat(r.FormValue(name), 64)
	return f
}

func pathUint(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// writeServiceError maps the services error taxonomy onto HTTP responses.
// HTML clients get the page re-rendered with the user-visible notice.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error, page string, data map[string]any) {
	var verr *services.ValidationError
	var cerr *services.ConflictError
	switch {
	case errors.As(err, &verr):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, verr.Message, nil)
			return
		}
		data["Error"] = verr.Message
		w.WriteHeader(http.StatusBadRequest)
		render(w, r, log, page, data)
	case errors.As(err, &cerr):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusConflict, cerr.Message, nil)
			return
		}
		data["Error"] = cerr.Message
		w.WriteHeader(http.StatusConflict)
		render(w, r, log, page, data)
	case errors.Is(err, services.ErrNotFound):
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		http.Error(w, "Запись не найдена", http.StatusNotFound)
	default:
		log.Errorw("operation failed", "error", err)
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
