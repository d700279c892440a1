package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
)

type MaterialHandler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewMaterialHandler(gdb *gorm.DB, log *zap.SugaredLogger) *MaterialHandler {
	return &MaterialHandler{DB: gdb, Log: log}
}

// List shows the material stock with search, sort and a low-stock filter
// (rows below their minimum allowed quantity).
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	sort := q.Get("sort")
	lowStock := q.Get("low_stock") == "1"

	dbq := h.DB.WithContext(r.Context()).Model(&models.Material{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where(`lower("Name") LIKE ?`, like)
	}
	if lowStock {
		dbq = dbq.Where(`"QuantityInStock" < "MinAllowedQuantity"`)
	}
	switch sort {
	case "name_desc":
		dbq = dbq.Order(`"Name" DESC`)
	case "stock_asc":
		dbq = dbq.Order(`"QuantityInStock" ASC`)
	case "stock_desc":
		dbq = dbq.Order(`"QuantityInStock" DESC`)
	default:
		dbq = dbq.Order(`"Name" ASC`)
	}

	var materials []models.Material
	if err := dbq.Find(&materials).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "materials.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, materials)
		return
	}
	render(w, r, h.Log, "materials.html", map[string]any{
		"Materials": materials,
		"Search":    search,
		"Sort":      sort,
		"LowStock":  lowStock,
	})
}
