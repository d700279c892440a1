package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/partner-admin/internal/models"
)

func TestMaterialsLowStockFilter(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(t, db, stubFuncs{})
	_, cookie := seedUser(t, db, "analyst1", models.RoleAnalyst, nil)

	materials := []models.Material{
		{Name: "Сталь", QuantityInStock: 5, MinAllowedQuantity: 10},
		{Name: "Медь", QuantityInStock: 50, MinAllowedQuantity: 10},
		{Name: "Пластик", QuantityInStock: 10, MinAllowedQuantity: 10},
	}
	for i := range materials {
		if err := db.Create(&materials[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	get := func(query string) []models.Material {
		t.Helper()
		r := httptest.NewRequest(http.MethodGet, "/materials"+query, nil)
		r.Header.Set("Accept", "application/json")
		r.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		var rows []models.Material
		if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return rows
	}

	if rows := get(""); len(rows) != 3 {
		t.Fatalf("expected all 3 materials, got %d", len(rows))
	}
	// The boundary row at exactly the minimum is not low stock.
	rows := get("?low_stock=1")
	if len(rows) != 1 || rows[0].Name != "Сталь" {
		t.Fatalf("expected only the below-minimum material, got %+v", rows)
	}

	if rows := get("?sort=stock_desc"); rows[0].Name != "Медь" {
		t.Fatalf("expected the largest stock first, got %+v", rows)
	}
}
