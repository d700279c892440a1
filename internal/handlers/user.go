package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

type UserHandler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewUserHandler(gdb *gorm.DB, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{DB: gdb, Log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.WithContext(r.Context()).
		Preload("Partner").
		Order(`"Username" asc`).
		Find(&users).Error; err != nil {
		writeServiceError(w, r, h.Log, err, "users.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, users)
		return
	}
	var partners []models.Partner
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&partners).Error
	render(w, r, h.Log, "users.html", map[string]any{"Users": users, "Partners": partners})
}

// Create adds an account with any role. Partner-role accounts must name
// the partner they belong to.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	role := models.Role(r.FormValue("role"))
	partnerID := formUint(r, "partner_id")

	v := make(validation.Violations)
	validation.Required("username", username, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", pass, v)
	if !role.Valid() {
		v["role"] = "unknown_role"
	}
	if !v.Empty() {
		h.createFailed(w, r, "Проверьте правильность заполнения полей", v)
		return
	}
	if role == models.RolePartner && partnerID == 0 {
		h.createFailed(w, r, "Для роли 'partner' необходимо выбрать партнёра", nil)
		return
	}

	user := models.User{Username: username, Email: email, Role: role}
	if role == models.RolePartner {
		var exists int64
		if err := h.DB.WithContext(r.Context()).Model(&models.Partner{}).Where(`"PartnerID" = ?`, partnerID).Count(&exists).Error; err != nil || exists == 0 {
			h.createFailed(w, r, "Партнёр не найден", nil)
			return
		}
		user.PartnerID = &partnerID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user.Password = string(hash)

	if err := h.DB.WithContext(r.Context()).Create(&user).Error; err != nil {
		if services.IsDuplicate(err) {
			h.createFailed(w, r, "Пользователь с таким именем или email уже существует", nil)
			return
		}
		writeServiceError(w, r, h.Log, err, "users.html", map[string]any{})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, user)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *UserHandler) createFailed(w http.ResponseWriter, r *http.Request, msg string, details any) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, details)
		return
	}
	var users []models.User
	var partners []models.Partner
	_ = h.DB.WithContext(r.Context()).Preload("Partner").Order(`"Username" asc`).Find(&users).Error
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&partners).Error
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "users.html", map[string]any{"Error": msg, "Users": users, "Partners": partners})
}
