package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/partner-admin/internal/models"
)

func TestMyRequestsScopedToOwnFulfilled(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})

	mine := models.Partner{Name: "ООО Ротор", INN: "1111111111"}
	other := models.Partner{Name: "ООО Статор", INN: "2222222222"}
	product := models.Product{Name: "Редуктор"}
	manager := models.Manager{FullName: "Иванов И.И."}
	for _, m := range []any{&mine, &other, &product, &manager} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	reqs := []models.Request{
		{PartnerID: mine.ID, ProductID: product.ID, ManagerID: manager.ID, Quantity: 1, UnitPrice: 10, TotalPrice: 10, Status: models.StatusFulfilled},
		{PartnerID: mine.ID, ProductID: product.ID, ManagerID: manager.ID, Quantity: 2, UnitPrice: 10, TotalPrice: 20, Status: models.StatusPending},
		{PartnerID: other.ID, ProductID: product.ID, ManagerID: manager.ID, Quantity: 3, UnitPrice: 10, TotalPrice: 30, Status: models.StatusFulfilled},
	}
	for i := range reqs {
		if err := db.Create(&reqs[i]).Error; err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}
	_, cookie := seedUser(t, db, "partneruser", models.RolePartner, &mine.ID)

	r := httptest.NewRequest(http.MethodGet, "/my_requests", nil)
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var rows []models.Request
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly the own fulfilled request, got %d rows", len(rows))
	}
	if rows[0].PartnerID != mine.ID || rows[0].Status != models.StatusFulfilled {
		t.Fatalf("unexpected row %+v", rows[0])
	}
}

func TestMyRequestsWithoutPartnerLink(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	// Partner-role user without a partner link is a data defect the page
	// reports politely instead of panicking.
	_, cookie := seedUser(t, db, "stray", models.RolePartner, nil)

	r := httptest.NewRequest(http.MethodGet, "/my_requests", nil)
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "не привязан партнёр") {
		t.Fatalf("expected the missing-link message, got %s", w.Body.String())
	}
}

func TestMyRequestsForbiddenForManager(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	r := httptest.NewRequest(http.MethodGet, "/my_requests", nil)
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("my_requests is partner-only, got %d", w.Code)
	}
}

func TestAddRequestRejectedBelowFloor(t *testing.T) {
	db := setupTestDB(t)
	// 25% discount on a 200.00 minimum -> floor 150.00
	router := newTestRouter(t, db, stubFuncs{discount: 0.25})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	partner := models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	product := models.Product{Name: "Редуктор", MinPartnerPrice: floatPtr(200)}
	manager := models.Manager{FullName: "Иванов И.И."}
	for _, m := range []any{&partner, &product, &manager} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	form := "partner_id=1&product_id=1&manager_id=1&quantity=5&unit_price=149.99"
	r := httptest.NewRequest(http.MethodPost, "/add_request", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "150.00") || !strings.Contains(w.Body.String(), "25%") {
		t.Fatalf("error must name the floor and discount, got %s", w.Body.String())
	}

	var count int64
	db.Model(&models.Request{}).Count(&count)
	if count != 0 {
		t.Fatal("rejected request must not be stored")
	}
}

func TestAddRequestAcceptedComputesTotal(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{discount: 0.25})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	partner := models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	product := models.Product{Name: "Редуктор", MinPartnerPrice: floatPtr(200)}
	manager := models.Manager{FullName: "Иванов И.И."}
	for _, m := range []any{&partner, &product, &manager} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	form := "partner_id=1&product_id=1&manager_id=1&quantity=5&unit_price=150"
	r := httptest.NewRequest(http.MethodPost, "/add_request", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var stored models.Request
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.TotalPrice != 750 {
		t.Errorf("expected derived total 750, got %v", stored.TotalPrice)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("expected pending status, got %q", stored.Status)
	}
}

func TestRequestsStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "manager1", models.RoleManager, nil)

	partner := models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	product := models.Product{Name: "Редуктор"}
	manager := models.Manager{FullName: "Иванов И.И."}
	for _, m := range []any{&partner, &product, &manager} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	for _, status := range []string{models.StatusPending, models.StatusPending, models.StatusFulfilled} {
		req := models.Request{PartnerID: partner.ID, ProductID: product.ID, ManagerID: manager.ID, Quantity: 1, UnitPrice: 10, TotalPrice: 10, Status: status}
		if err := db.Create(&req).Error; err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/requests?status_filter="+url.QueryEscape(models.StatusFulfilled), nil)
	r.Header.Set("Accept", "application/json")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Items    []models.Request `json:"items"`
		Statuses []string         `json:"statuses"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 fulfilled request, got %d", len(resp.Items))
	}
	if len(resp.Statuses) != 2 {
		t.Fatalf("expected 2 distinct statuses, got %v", resp.Statuses)
	}
}
