package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/services"
)

type SupplyHandler struct {
	DB      *gorm.DB
	Service *services.SupplyService
	Log     *zap.SugaredLogger
}

func NewSupplyHandler(gdb *gorm.DB, svc *services.SupplyService, log *zap.SugaredLogger) *SupplyHandler {
	return &SupplyHandler{DB: gdb, Service: svc, Log: log}
}

func (h *SupplyHandler) List(w http.ResponseWriter, r *http.Request) {
	var supplies []models.Supply
	if err := h.DB.WithContext(r.Context()).
		Preload("Supplier").Preload("Material").Preload("Manager").
		Order(`"SupplyDate" DESC`).
		Find(&supplies).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "supplies.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, supplies)
		return
	}
	data := h.formData(r)
	data["Supplies"] = supplies
	render(w, r, h.Log, "supplies.html", data)
}

// Create registers a supply: the insert and the stock increment are one
// transaction in the service layer.
func (h *SupplyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	supply := &models.Supply{
		SupplierID: formUint(r, "supplier_id"),
		MaterialID: formUint(r, "material_id"),
		ManagerID:  formUint(r, "manager_id"),
		Quantity:   formFloat(r, "quantity"),
	}
	if s := r.FormValue("supply_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			supply.SupplyDate = d
		}
	}
	if supply.SupplierID == 0 || supply.MaterialID == 0 || supply.ManagerID == 0 {
		msg := "Выберите поставщика, материал и менеджера"
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, msg, nil)
			return
		}
		data := h.formData(r)
		data["Error"] = msg
		w.WriteHeader(http.StatusBadRequest)
		render(w, r, h.Log, "supplies.html", data)
		return
	}
	if err := h.Service.Create(r.Context(), supply); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			msg := "Поставщик, материал или менеджер не найден"
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusNotFound, msg, nil)
				return
			}
			data := h.formData(r)
			data["Error"] = msg
			w.WriteHeader(http.StatusNotFound)
			render(w, r, h.Log, "supplies.html", data)
			return
		}
		data := h.formData(r)
		writeServiceError(w, r, h.Log, err, "supplies.html", data)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, supply)
		return
	}
	http.Redirect(w, r, "/supplies", http.StatusSeeOther)
}

func (h *SupplyHandler) formData(r *http.Request) map[string]any {
	var suppliers []models.Supplier
	var materials []models.Material
	var managers []models.Manager
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&suppliers).Error
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&materials).Error
	_ = h.DB.WithContext(r.Context()).Order(`"FullName" asc`).Find(&managers).Error
	return map[string]any{"Suppliers": suppliers, "Materials": materials, "Managers": managers}
}
