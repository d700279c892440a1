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
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

type PartnerHandler struct {
	DB    *gorm.DB
	Funcs db.StoredFuncs
	Log   *zap.SugaredLogger
}

func NewPartnerHandler(gdb *gorm.DB, funcs db.StoredFuncs, log *zap.SugaredLogger) *PartnerHandler {
	return &PartnerHandler{DB: gdb, Funcs: funcs, Log: log}
}

// PartnerRow is a partner with its discount evaluated in the same SELECT,
// so discount sorting stays correct under any future pagination.
type PartnerRow struct {
	models.Partner
	Discount float64       `gorm:"column:discount" json:"discount"`
	Users    []models.User `gorm:"-" json:"users,omitempty"`
}

// List renders the partner directory with search, a minimum-rating filter
// and four sort orders.
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	ratingFilter := strings.TrimSpace(q.Get("rating_filter"))
	sort := q.Get("sort")

	dbq := h.DB.WithContext(r.Context()).Model(&models.Partner{}).
		Select(`"Partners".*, ` + h.Funcs.DiscountExpr() + ` AS discount`)
	if search != "" {
		// search matches the partner name only
		dbq = dbq.Where(`lower("Name") LIKE ?`, "%"+strings.ToLower(search)+"%")
	}
	if ratingFilter != "" {
		if minRating, err := strconv.ParseFloat(ratingFilter, 64); err == nil {
			dbq = dbq.Where(`"Rating" >= ?`, minRating)
		}
	}
	switch sort {
	case "name_desc":
		dbq = dbq.Order(`"Name" DESC`)
	case "rating_desc":
		dbq = dbq.Order(`"Rating" DESC`)
	case "discount_desc":
		dbq = dbq.Order(h.Funcs.DiscountExpr() + " DESC")
	default:
		dbq = dbq.Order(`"Name" ASC`)
	}

	var rows []PartnerRow
	if err := dbq.Find(&rows).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "partners.html", map[string]any{})
		return
	}
	h.attachUsers(r, rows)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, rows)
		return
	}
	render(w, r, h.Log, "partners.html", map[string]any{
		"Partners":     rows,
		"Search":       search,
		"RatingFilter": ratingFilter,
		"Sort":         sort,
	})
}

// attachUsers loads the users of all listed partners in one query.
func (h *PartnerHandler) attachUsers(r *http.Request, rows []PartnerRow) {
	if len(rows) == 0 {
		return
	}
	ids := make([]uint, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Where(`"PartnerID" IN ?`, ids).Find(&users).Error; err != nil {
		h.Log.Warnw("partner users lookup failed", "error", err)
		return
	}
	byPartner := map[uint][]models.User{}
	for _, u := range users {
		if u.PartnerID != nil {
			byPartner[*u.PartnerID] = append(byPartner[*u.PartnerID], u)
		}
	}
	for i := range rows {
		rows[i].Users = byPartner[rows[i].ID]
	}
}

func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	inn := strings.TrimSpace(r.FormValue("inn"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	email := strings.TrimSpace(r.FormValue("email"))

	v := make(validation.Violations)
	validation.Required("name", name, v)
	validation.Required("inn", inn, v)
	if inn != "" {
		validation.INN("inn", inn, v)
	}
	validation.Phone("phone", phone, v)
	validation.Email("email", email, v)

	var rating *float64
	if s := r.FormValue("rating"); s != "" {
		val := formFloat(r, "rating")
		validation.RangeFloat("rating", val, 0, 5, v)
		rating = &val
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		render(w, r, h.Log, "partners.html", map[string]any{"Error": "Проверьте правильность заполнения полей", "Violations": v})
		return
	}

	partner := models.Partner{
		Name:             name,
		LegalAddress:     strings.TrimSpace(r.FormValue("legal_address")),
		INN:              inn,
		DirectorFullName: strings.TrimSpace(r.FormValue("director_full_name")),
		Phone:            phone,
		Email:            email,
		Rating:           rating,
	}
	if err := h.DB.WithContext(r.Context()).Create(&partner).Error; err != nil {
		if services.IsDuplicate(err) {
			msg := "Партнёр с таким именем или ИНН уже существует"
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusConflict, msg, nil)
				return
			}
			w.WriteHeader(http.StatusConflict)
			render(w, r, h.Log, "partners.html", map[string]any{"Error": msg})
			return
		}
		writeServiceError(w, r, h.Log, err, "partners.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, partner)
		return
	}
	http.Redirect(w, r, "/partners", http.StatusSeeOther)
}

func (h *PartnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := formUint(r, "id")
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeletePartner(r.Context(), h.DB, id); err != nil {
		writeServiceError(w, r, h.Log, err, "partners.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	http.Redirect(w, r, "/partners", http.StatusSeeOther)
}

// Requests shows the sales-request history of one partner.
func (h *PartnerHandler) Requests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUint(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var partner models.Partner
	if err := h.DB.WithContext(r.Context()).First(&partner, id).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		http.Error(w, "Партнёр не найден", http.StatusNotFound)
		return
	}
	var requests []models.Request
	if err := h.DB.WithContext(r.Context()).
		Preload("Product").
		Where(`"PartnerID" = ?`, id).
		Order(`"CreatedAt" DESC`).
		Find(&requests).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "partner_requests.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"partner": partner, "requests": requests})
		return
	}
	render(w, r, h.Log, "partner_requests.html", map[string]any{"Partner": partner, "Requests": requests})
}
