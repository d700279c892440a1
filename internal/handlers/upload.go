package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/csvimport"
	"github.com/diewo77/partner-admin/internal/httpx"
)

// uploadMaxBytes caps the multipart form size for CSV uploads.
const uploadMaxBytes = 10 << 20

type UploadHandler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewUploadHandler(gdb *gorm.DB, log *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{DB: gdb, Log: log}
}

func (h *UploadHandler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.Log, "upload.html", nil)
}

// Upload imports partners from a CSV file. Partial success is normal: the
// result page lists the inserted count next to the per-row errors.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMaxBytes); err != nil {
		h.failed(w, r, "Не удалось прочитать файл")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.failed(w, r, "Выберите CSV-файл")
		return
	}
	defer file.Close()

	result, err := csvimport.Import(r.Context(), h.DB, file)
	if err != nil {
		var headerErr *csvimport.ErrBadHeader
		if errors.As(err, &headerErr) {
			h.failed(w, r, headerErr.Error())
			return
		}
		h.Log.Errorw("csv import failed", "error", err)
		h.failed(w, r, "Не удалось импортировать файл")
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, result)
		return
	}
	render(w, r, h.Log, "upload.html", map[string]any{"Result": result})
}

func (h *UploadHandler) failed(w http.ResponseWriter, r *http.Request, msg string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "upload.html", map[string]any{"Error": msg})
}
