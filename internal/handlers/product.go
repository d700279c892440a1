package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

type ProductHandler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewProductHandler(gdb *gorm.DB, log *zap.SugaredLogger) *ProductHandler {
	return &ProductHandler{DB: gdb, Log: log}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	sort := q.Get("sort")

	dbq := h.DB.WithContext(r.Context()).Model(&models.Product{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where(`lower("Name") LIKE ? OR lower("StandardNumber") LIKE ?`, like, like)
	}
	switch sort {
	case "name_desc":
		dbq = dbq.Order(`"Name" DESC`)
	case "price_asc":
		dbq = dbq.Order(`"MinPartnerPrice" ASC`)
	case "price_desc":
		dbq = dbq.Order(`"MinPartnerPrice" DESC`)
	case "created_desc":
		dbq = dbq.Order(`"CreatedAt" DESC`)
	default:
		dbq = dbq.Order(`"Name" ASC`)
	}

	var products []models.Product
	if err := dbq.Find(&products).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "products.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, products)
		return
	}
	render(w, r, h.Log, "products.html", map[string]any{"Products": products, "Search": search, "Sort": sort})
}

func (h *ProductHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.Log, "product_form.html", map[string]any{"Action": "/add_product"})
}

func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	product, v := h.parseForm(r)
	if !v.Empty() {
		h.formFailed(w, r, "/add_product", product, v)
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(product).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "product_form.html", map[string]any{"Action": "/add_product", "Product": product})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, product)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.WithContext(r.Context()).First(&product, id).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		http.Error(w, "Продукт не найден", http.StatusNotFound)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, product)
		return
	}
	render(w, r, h.Log, "product_form.html", map[string]any{"Action": r.URL.Path, "Product": &product})
}

func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	product, v := h.parseForm(r)
	if !v.Empty() {
		h.formFailed(w, r, r.URL.Path, product, v)
		return
	}
	res := h.DB.WithContext(r.Context()).Model(&models.Product{}).Where(`"ProductID" = ?`, id).Updates(map[string]any{
		"Name":                product.Name,
		"Description":         product.Description,
		"StandardNumber":      product.StandardNumber,
		"ManufactureTimeDays": product.ManufactureTimeDays,
		"CostPrice":           product.CostPrice,
		"MinPartnerPrice":     product.MinPartnerPrice,
	})
	if res.Error != nil {
		writeServiceError(w, r, h.Log, res.Error, "product_form.html", map[string]any{"Action": r.URL.Path, "Product": product})
		return
	}
	if res.RowsAffected == 0 {
		writeServiceError(w, r, h.Log, services.ErrNotFound, "product_form.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": id})
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := formUint(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteProduct(r.Context(), h.DB, id); err != nil {
		writeServiceError(w, r, h.Log, err, "products.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *ProductHandler) parseForm(r *http.Request) (*models.Product, validation.Violations) {
	v := make(validation.Violations)
	if err := r.ParseForm(); err != nil {
		v["form"] = "invalid"
		return &models.Product{}, v
	}
	product := &models.Product{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		StandardNumber: strings.TrimSpace(r.FormValue("standard_number")),
	}
	validation.Required("name", product.Name, v)

	if s := r.FormValue("manufacture_time_days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days < 0 {
			v["manufacture_time_days"] = "must_be_non_negative_integer"
		} else {
			product.ManufactureTimeDays = &days
		}
	}
	if s := r.FormValue("cost_price"); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil || price < 0 {
			v["cost_price"] = "must_be_non_negative"
		} else {
			product.CostPrice = &price
		}
	}
	if s := r.FormValue("min_partner_price"); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil || price < 0 {
			v["min_partner_price"] = "must_be_non_negative"
		} else {
			product.MinPartnerPrice = &price
		}
	}
	return product, v
}

func (h *ProductHandler) formFailed(w http.ResponseWriter, r *http.Request, action string, product *models.Product, v validation.Violations) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "product_form.html", map[string]any{
		"Action":     action,
		"Product":    product,
		"Error":      "Проверьте правильность заполнения полей",
		"Violations": v,
	})
}
