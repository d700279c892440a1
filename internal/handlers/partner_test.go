package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/partner-admin/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestPartnersListSearchFilterSort(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	partners := []models.Partner{
		{Name: "ООО Альфа", INN: "1111111111", Rating: floatPtr(4.5), DirectorFullName: "Орлов О.О."},
		{Name: "Acme Trading", INN: "2222222222", Rating: floatPtr(2.0), DirectorFullName: "Петров П.П."},
		{Name: "ЗАО Гамма", INN: "3333333333", Rating: floatPtr(3.5), DirectorFullName: "Acme Smith"},
	}
	for i := range partners {
		if err := db.Create(&partners[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	get := func(query string) []PartnerRow {
		r := httptest.NewRequest(http.MethodGet, "/partners"+query, nil)
		r.Header.Set("Accept", "application/json")
		r.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("GET /partners%s: expected 200, got %d body=%s", query, w.Code, w.Body.String())
		}
		var rows []PartnerRow
		if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return rows
	}

	all := get("")
	if len(all) != 3 {
		t.Fatalf("expected 3 partners, got %d", len(all))
	}
	if all[0].Name != "Acme Trading" {
		t.Fatalf("default sort is name asc, got %q first", all[0].Name)
	}

	// search matches the name only: the director named Acme must not match
	found := get("?search=acme")
	if len(found) != 1 || found[0].Name != "Acme Trading" {
		t.Fatalf("search by name: expected only Acme Trading, got %v", found)
	}

	rated := get("?rating_filter=3")
	if len(rated) != 2 {
		t.Fatalf("rating filter: expected 2 rows, got %d", len(rated))
	}

	byRating := get("?sort=rating_desc")
	if byRating[0].Name != "ООО Альфа" {
		t.Fatalf("rating sort: expected Альфа first, got %q", byRating[0].Name)
	}
}

func TestPartnersForbiddenForPartnerRole(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	partner := models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, cookie := seedUser(t, db, "partneruser", models.RolePartner, &partner.ID)

	r := httptest.NewRequest(http.MethodGet, "/partners", nil)
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for partner role, got %d", w.Code)
	}
}

func TestPartnersAnonymousRedirectsToLogin(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})

	r := httptest.NewRequest(http.MethodGet, "/partners", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestAddPartnerValidatesINN(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	form := "name=ООО Ротор&inn=12345"
	r := httptest.NewRequest(http.MethodPost, "/add_partner", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Partner{}).Count(&count)
	if count != 0 {
		t.Fatal("invalid partner must not be stored")
	}
}

func TestDeletePartnerConflict(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	partner := models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedUser(t, db, "attached", models.RolePartner, &partner.ID)

	form := "id=1"
	r := httptest.NewRequest(http.MethodPost, "/delete_partner", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "привязаны пользователи") {
		t.Fatalf("expected the conflict cause in body, got %s", w.Body.String())
	}
}
