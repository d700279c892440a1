package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/auth"
	"github.com/diewo77/partner-admin/internal/httpx"
	"github.com/diewo77/partner-admin/internal/metrics"
	"github.com/diewo77/partner-admin/internal/models"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/validation"
)

// invalidCredentials is deliberately identical for an unknown username and
// a wrong password, so the login form does not leak which accounts exist.
const invalidCredentials = "Неверное имя пользователя или пароль"

type AuthHandler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewAuthHandler(db *gorm.DB, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{DB: db, Log: log}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, h.Log, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	metrics.AuthAttempts.Inc()

	username := strings.TrimSpace(r.FormValue("username"))
	pass := r.FormValue("password")
	if username == "" || pass == "" {
		h.loginFailed(w, r, invalidCredentials)
		return
	}
	var user models.User
	if err := h.DB.WithContext(r.Context()).Where(`"Username" = ?`, username).First(&user).Error; err != nil {
		h.loginFailed(w, r, invalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)) != nil {
		h.loginFailed(w, r, invalidCredentials)
		return
	}
	auth.CreateSession(w, user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "role": user.Role})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, msg string) {
	metrics.AuthFailures.Inc()
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnauthorized, msg, nil)
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
	render(w, r, h.Log, "login.html", map[string]any{"Error": msg})
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	var partners []models.Partner
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&partners).Error
	render(w, r, h.Log, "register.html", map[string]any{"Partners": partners})
}

// Register creates a self-service account. Self-registration can only ever
// produce a partner-role user tied to an existing partner; staff accounts
// are created by a manager through /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	partnerID := formUint(r, "partner_id")

	v := make(validation.Violations)
	validation.Required("username", username, v)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("password", pass, v)
	if partnerID == 0 {
		v["partner_id"] = "required"
	}
	if !v.Empty() {
		h.registerFailed(w, r, "Заполните все обязательные поля", v)
		return
	}

	var exists int64
	if err := h.DB.WithContext(r.Context()).Model(&models.Partner{}).Where(`"PartnerID" = ?`, partnerID).Count(&exists).Error; err != nil || exists == 0 {
		h.registerFailed(w, r, "Партнёр не найден", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user := models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		Role:      models.RolePartner,
		PartnerID: &partnerID,
	}
	if err := h.DB.WithContext(r.Context()).Create(&user).Error; err != nil {
		if services.IsDuplicate(err) {
			h.registerFailed(w, r, "Пользователь с таким именем или email уже существует", nil)
			return
		}
		h.Log.Errorw("register failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": user.ID, "role": user.Role})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) registerFailed(w http.ResponseWriter, r *http.Request, msg string, details any) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, details)
		return
	}
	var partners []models.Partner
	_ = h.DB.WithContext(r.Context()).Order(`"Name" asc`).Find(&partners).Error
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, h.Log, "register.html", map[string]any{"Error": msg, "Partners": partners})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
