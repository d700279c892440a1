package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/db"
	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/policy"
	"github.com/diewo77/partner-admin/internal/services"
)

type CompositionHandler struct {
	DB    *gorm.DB
	Funcs db.StoredFuncs
	Authz *policy.AuthGate
	Log   *zap.SugaredLogger
}

func NewCompositionHandler(gdb *gorm.DB, funcs db.StoredFuncs, authz *policy.AuthGate, log *zap.SugaredLogger) *CompositionHandler {
	return &CompositionHandler{DB: gdb, Funcs: funcs, Authz: authz, Log: log}
}

// listData loads the composition join with its two free-text filters and
// six sort orders for the calc page.
func (h *CompositionHandler) listData(r *http.Request) (map[string]any, error) {
	q := r.URL.Query()
	productFilter := strings.TrimSpace(q.Get("product_filter"))
	materialFilter := strings.TrimSpace(q.Get("material_filter"))
	sort := q.Get("sort")

	dbq := h.DB.WithContext(r.Context()).Model(&models.ProductComposition{}).
		Joins(`JOIN "Products" ON "Products"."ProductID" = "ProductComposition"."ProductID"`).
		Joins(`JOIN "Materials" ON "Materials"."MaterialID" = "ProductComposition"."MaterialID"`).
		Preload("Product").Preload("Material")
	if productFilter != "" {
		dbq = dbq.Where(`lower("Products"."Name") LIKE ?`, "%"+strings.ToLower(productFilter)+"%")
	}
	if materialFilter != "" {
		dbq = dbq.Where(`lower("Materials"."Name") LIKE ?`, "%"+strings.ToLower(materialFilter)+"%")
	}
	switch sort {
	case "product_desc":
		dbq = dbq.Order(`"Products"."Name" DESC`)
	case "material_asc":
		dbq = dbq.Order(`"Materials"."Name" ASC`)
	case "material_desc":
		dbq = dbq.Order(`"Materials"."Name" DESC`)
	case "quantity_asc":
		dbq = dbq.Order(`"ProductComposition"."Quantity" ASC`)
	case "quantity_desc":
		dbq = dbq.Order(`"ProductComposition"."Quantity" DESC`)
	default:
		dbq = dbq.Order(`"Products"."Name" ASC`)
	}

	var links []models.ProductComposition
	if err := dbq.Find(&links).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	var materials []models.Material
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&products).Error
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&materials).Error

	return map[string]any{
		"Links":          links,
		"Products":       products,
		"Materials":      materials,
		"ProductFilter":  productFilter,
		"MaterialFilter": materialFilter,
		"Sort":           sort,
	}, nil
}

func (h *CompositionHandler) CalcPage(w http.ResponseWriter, r *http.Request) {
	data, err := h.listData(r)
	if err != nil {
		writeServiceError(w, r, h.Log, err, "calc.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, data["Links"])
		return
	}
	render(w, r, h.Log, "calc.html", data)
}

// Calc runs the required-material computation. The calc action is held by
// manager and analyst only, even though the page itself is readable by
// partner users too, so the check happens here rather than on the route.
func (h *CompositionHandler) Calc(w http.ResponseWriter, r *http.Request) {
	if !h.Authz.Can(r, policy.ActionCalc, policy.ResourceComposition) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		http.Error(w, policy.AccessDeniedNotice, http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	productID := formUint(r, "product_id")
	materialID := formUint(r, "material_id")
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	param1 := formFloat(r, "param1")
	param2 := formFloat(r, "param2")

	fail := func(msg string) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, msg, nil)
			return
		}
		data, derr := h.listData(r)
		if derr != nil {
			data = map[string]any{}
		}
		data["Error"] = msg
		w.WriteHeader(http.StatusBadRequest)
		render(w, r, h.Log, "calc.html", data)
	}

	if productID == 0 || materialID == 0 {
		fail("Выберите продукт и материал")
		return
	}
	if quantity <= 0 {
		fail("Количество должно быть больше 0")
		return
	}
	if param1 <= 0 || param2 <= 0 {
		fail("Параметры должны быть больше 0")
		return
	}

	result, err := h.Funcs.RequiredMaterial(r.Context(), h.DB, productID, materialID, quantity, param1, param2)
	if err != nil {
		writeServiceError(w, r, h.Log, err, "calc.html", map[string]any{})
		return
	}
	if result < 0 {
		fail("Продукт или материал не найден")
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"result": result})
		return
	}
	data, derr := h.listData(r)
	if derr != nil {
		data = map[string]any{}
	}
	data["Result"] = result
	data["CalcProductID"] = productID
	data["CalcMaterialID"] = materialID
	render(w, r, h.Log, "calc.html", data)
}

func (h *CompositionHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	data := h.refData(r)
	data["Action"] = "/add_product_material"
	render(w, r, h.Log, "composition_form.html", data)
}

func (h *CompositionHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	link := models.ProductComposition{
		ProductID:  formUint(r, "product_id"),
		MaterialID: formUint(r, "material_id"),
		Quantity:   formFloat(r, "quantity"),
	}
	if msg := h.validateLink(&link); msg != "" {
		h.linkFailed(w, r, "/add_product_material", msg)
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&link).Error; err != nil {
		if services.IsDuplicate(err) {
			h.linkFailed(w, r, "/add_product_material", "Связь продукта и материала уже существует")
			return
		}
		writeServiceError(w, r, h.Log, err, "composition_form.html", h.refData(r))
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, link)
		return
	}
	http.Redirect(w, r, "/calc", http.StatusSeeOther)
}

func (h *CompositionHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	pid, ok1 := pathUint(r, "pid")
	mid, ok2 := pathUint(r, "mid")
	if !ok1 || !ok2 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var link models.ProductComposition
	err := h.DB.WithContext(r.Context()).
		Preload("Product").Preload("Material").
		Where(`"ProductID" = ? AND "MaterialID" = ?`, pid, mid).
		First(&link).Error
	if err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		http.Error(w, "Связь не найдена", http.StatusNotFound)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, link)
		return
	}
	data := h.refData(r)
	data["Action"] = r.URL.Path
	data["Link"] = &link
	render(w, r, h.Log, "composition_form.html", data)
}

func (h *CompositionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	pid, ok1 := pathUint(r, "pid")
	mid, ok2 := pathUint(r, "mid")
	if !ok1 || !ok2 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	quantity := formFloat(r, "quantity")
	if quantity <= 0 {
		h.linkFailed(w, r, r.URL.Path, "Количество должно быть больше 0")
		return
	}
	res := h.DB.WithContext(r.Context()).Model(&models.ProductComposition{}).
		Where(`"ProductID" = ? AND "MaterialID" = ?`, pid, mid).
		Update("Quantity", quantity)
	if res.Error != nil {
		writeServiceError(w, r, h.Log, res.Error, "composition_form.html", h.refData(r))
		return
	}
	if res.RowsAffected == 0 {
		writeServiceError(w, r, h.Log, services.ErrNotFound, "composition_form.html", h.refData(r))
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
		return
	}
	http.Redirect(w, r, "/calc", http.StatusSeeOther)
}

func (h *CompositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pid := formUint(r, "product_id")
	mid := formUint(r, "material_id")
	if pid == 0 || mid == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteComposition(r.Context(), h.DB, pid, mid); err != nil {
		writeServiceError(w, r, h.Log, err, "calc.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}
	http.Redirect(w, r, "/calc", http.StatusSeeOther)
}

func (h *CompositionHandler) validateLink(link *models.ProductComposition) string {
	if link.ProductID == 0 || link.MaterialID == 0 {
		return "Выберите продукт и материал"
	}
	if link.Quantity <= 0 {
		return "Количество должно быть больше 0"
	}
	return ""
}

func (h *CompositionHandler) linkFailed(w http.ResponseWriter, r *http.Request, action, msg string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}
	data := h.refData(r)
	data["Action"] = action
	data["Error"] = msg
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "composition_form.html", data)
}

func (h *CompositionHandler) refData(r *http.Request) map[string]any {
	var products []models.Product
	var materials []models.Material
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&products).Error
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&materials).Error
	return map[string]any{"Products": products, "Materials": materials}
}
