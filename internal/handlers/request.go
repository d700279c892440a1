package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/policy"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

type RequestHandler struct {
	DB      *gorm.DB
	Service *services.RequestService
	Log     *zap.SugaredLogger
}

func NewRequestHandler(gdb *gorm.DB, svc *services.RequestService, log *zap.SugaredLogger) *RequestHandler {
	return &RequestHandler{DB: gdb, Service: svc, Log: log}
}

// List shows all sales requests with partner-name search, a status filter
// fed by the distinct statuses present in the store, and six sort orders.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	statusFilter := strings.TrimSpace(q.Get("status_filter"))
	sort := q.Get("sort")

	dbq := h.DB.WithContext(r.Context()).Model(&models.Request{}).
		Joins(`JOIN "Partners" ON "Partners"."PartnerID" = "Requests"."PartnerID"`).
		Preload("Partner").Preload("Product").Preload("Manager")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where(`lower("Partners"."Name") LIKE ?`, like)
	}
	if statusFilter != "" {
		dbq = dbq.Where(`"Requests"."Status" = ?`, statusFilter)
	}
	switch sort {
	case "created_asc":
		dbq = dbq.Order(`"Requests"."CreatedAt" ASC`)
	case "total_asc":
		dbq = dbq.Order(`"Requests"."TotalPrice" ASC`)
	case "total_desc":
		dbq = dbq.Order(`"Requests"."TotalPrice" DESC`)
	case "partner_asc":
		dbq = dbq.Order(`"Partners"."Name" ASC`)
	case "partner_desc":
		dbq = dbq.Order(`"Partners"."Name" DESC`)
	default:
		dbq = dbq.Order(`"Requests"."CreatedAt" DESC`)
	}

	var requests []models.Request
	if err := dbq.Find(&requests).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "requests.html", map[string]any{})
		return
	}

	var statuses []string
	_ = h.DB.WithContext(r.Context()).Model(&models.Request{}).Distinct().Order(`"Status"`).Pluck("Status", &statuses).Error

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": requests, "statuses": statuses})
		return
	}
	render(w, r, h.Log, "requests.html", map[string]any{
		"Requests":     requests,
		"Statuses":     statuses,
		"Search":       search,
		"StatusFilter": statusFilter,
		"Sort":         sort,
	})
}

// My shows the fulfilled requests of the principal's own partner.
func (h *RequestHandler) My(w http.ResponseWriter, r *http.Request) {
	user, _ := policy.PrincipalFrom(r.Context())
	if user == nil || user.PartnerID == nil {
		msg := "К вашей учётной записи не привязан партнёр"
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, msg, nil)
			return
		}
		render(w, r, h.Log, "my_requests.html", map[string]any{"Error": msg})
		return
	}
	var requests []models.Request
	if err := h.DB.WithContext(r.Context()).
		Preload("Product").
		Where(`"PartnerID" = ? AND "Status" = ?`, *user.PartnerID, models.StatusFulfilled).
		Order(`"CreatedAt" DESC`).
		Find(&requests).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "my_requests.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, requests)
		return
	}
	render(w, r, h.Log, "my_requests.html", map[string]any{"Requests": requests})
}

func (h *RequestHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	data := h.formData(r)
	data["Action"] = "/add_request"
	render(w, r, h.Log, "request_form.html", data)
}

func (h *RequestHandler) Add(w http.ResponseWriter, r *http.Request) {
	req, v := h.parseForm(r)
	if !v.Empty() {
		h.formFailed(w, r, "/add_request", req, v)
		return
	}
	if err := h.Service.Create(r.Context(), req); err != nil {
		data := h.formData(r)
		data["Action"] = "/add_request"
		data["Request"] = req
		writeServiceError(w, r, h.Log, err, "request_form.html", data)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, req)
		return
	}
	http.Redirect(w, r, "/requests", http.StatusSeeOther)
}

func (h *RequestHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req models.Request
	if err := h.DB.WithContext(r.Context()).First(&req, id).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		http.Error(w, "Заявка не найдена", http.StatusNotFound)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, req)
		return
	}
	data := h.formData(r)
	data["Action"] = r.URL.Path
	data["Request"] = &req
	render(w, r, h.Log, "request_form.html", data)
}

func (h *RequestHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	req, v := h.parseForm(r)
	if !v.Empty() {
		h.formFailed(w, r, r.URL.Path, req, v)
		return
	}
	if err := h.Service.Update(r.Context(), id, req); err != nil {
		data := h.formData(r)
		data["Action"] = r.URL.Path
		data["Request"] = req
		writeServiceError(w, r, h.Log, err, "request_form.html", data)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": id})
		return
	}
	http.Redirect(w, r, "/requests", http.StatusSeeOther)
}

// formData loads the reference lists the request form renders its selects from.
func (h *RequestHandler) formData(r *http.Request) map[string]any {
	var partners []models.Partner
	var products []models.Product
	var managers []models.Manager
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&partners).Error
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&products).Error
	_ = h.DB.WithContext(r.Context()).Order(`"FullName" asc`).Find(&managers).Error
	return map[string]any{"Partners": partners, "Products": products, "Managers": managers}
}

func (h *RequestHandler) parseForm(r *http.Request) (*models.Request, validation.Violations) {
	v := make(validation.Violations)
	if err := r.ParseForm(); err != nil {
		v["form"] = "invalid"
		return &models.Request{}, v
	}
	req := &models.Request{
		PartnerID: formUint(r, "partner_id"),
		ManagerID: formUint(r, "manager_id"),
		ProductID: formUint(r, "product_id"),
		Quantity:  formFloat(r, "quantity"),
		UnitPrice: formFloat(r, "unit_price"),
		Status:    strings.TrimSpace(r.FormValue("status")),
	}
	if req.PartnerID == 0 {
		v["partner_id"] = "required"
	}
	if req.ManagerID == 0 {
		v["manager_id"] = "required"
	}
	if req.ProductID == 0 {
		v["product_id"] = "required"
	}
	validation.PositiveFloat("quantity", req.Quantity, v)
	validation.PositiveFloat("unit_price", req.UnitPrice, v)
	return req, v
}

func (h *RequestHandler) formFailed(w http.ResponseWriter, r *http.Request, action string, req *models.Request, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	data := h.formData(r)
	data["Action"] = action
	data["Request"] = req
	data["Error"] = "Проверьте правильность заполнения полей"
	data["Violations"] = v
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "request_form.html", data)
}
