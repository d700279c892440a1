package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Partner{}, &models.User{}, &models.Product{}, &models.Material{},
		&models.Supplier{}, &models.Manager{}, &models.Supply{}, &models.Request{},
		&models.ProductComposition{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// stubFuncs replaces the stored database functions in tests.
type stubFuncs struct {
	discount float64
	required float64
}

func (s stubFuncs) PartnerDiscount(_ context.Context, _ *gorm.DB, _ uint) (float64, error) {
	return s.discount, nil
}

func (s stubFuncs) RequiredMaterial(_ context.Context, _ *gorm.DB, _, _ uint, _ int, _, _ float64) (float64, error) {
	return s.required, nil
}

func (s stubFuncs) DiscountExpr() string { return "0.0" }

func seedRequestFixtures(t *testing.T, db *gorm.DB, minPrice *float64) (partner models.Partner, product models.Product, manager models.Manager) {
	partner = models.Partner{Name: "ООО Ротор", INN: "1234567890"}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("create partner: %v", err)
	}
	product = models.Product{Name: "Редуктор", MinPartnerPrice: minPrice}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	manager = models.Manager{FullName: "Иванов И.И."}
	if err := db.Create(&manager).Error; err != nil {
		t.Fatalf("create manager: %v", err)
	}
	return
}

func TestRequestCreateBelowFloorRejected(t *testing.T) {
	db := setupTestDB(t)
	minPrice := 100.0
	partner, product, manager := seedRequestFixtures(t, db, &minPrice)

	// 20% discount -> floor is 80.00
	svc := NewRequestService(db, stubFuncs{discount: 0.2})
	req := &models.Request{
		PartnerID: partner.ID, ProductID: product.ID, ManagerID: manager.ID,
		Quantity: 10, UnitPrice: 79.99,
	}
	err := svc.Create(context.Background(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "80.00") || !strings.Contains(verr.Message, "20%") {
		t.Fatalf("message must name the floor and discount: %q", verr.Message)
	}

	var count int64
	db.Model(&models.Request{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected request must not be stored, found %d rows", count)
	}
}

func TestRequestCreateAtFloorAccepted(t *testing.T) {
	db := setupTestDB(t)
	minPrice := 100.0
	partner, product, manager := seedRequestFixtures(t, db, &minPrice)

	svc := NewRequestService(db, stubFuncs{discount: 0.2})
	req := &models.Request{
		PartnerID: partner.ID, ProductID: product.ID, ManagerID: manager.ID,
		Quantity: 10, UnitPrice: 80.0,
	}
	if err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("expected default status %q, got %q", models.StatusPending, req.Status)
	}
	if req.TotalPrice != 800.0 {
		t.Errorf("expected total 800, got %v", req.TotalPrice)
	}
}

func TestRequestCreateNoMinPriceSkipsFloor(t *testing.T) {
	db := setupTestDB(t)
	partner, product, manager := seedRequestFixtures(t, db, nil)

	svc := NewRequestService(db, stubFuncs{discount: 0.5})
	req := &models.Request{
		PartnerID: partner.ID, ProductID: product.ID, ManagerID: manager.ID,
		Quantity: 1, UnitPrice: 0.01,
	}
	if err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create without min price: %v", err)
	}
}

func TestRequestCreateUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	partner, _, manager := seedRequestFixtures(t, db, nil)

	svc := NewRequestService(db, stubFuncs{})
	req := &models.Request{
		PartnerID: partner.ID, ProductID: 999, ManagerID: manager.ID,
		Quantity: 1, UnitPrice: 10,
	}
	err := svc.Create(context.Background(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Продукт не найден" {
		t.Fatalf("unexpected message %q", verr.Message)
	}
}

func TestRequestUpdateRecomputesTotalAndRevalidates(t *testing.T) {
	db := setupTestDB(t)
	minPrice := 100.0
	partner, product, manager := seedRequestFixtures(t, db, &minPrice)

	svc := NewRequestService(db, stubFuncs{discount: 0.1})
	req := &models.Request{
		PartnerID: partner.ID, ProductID: product.ID, ManagerID: manager.ID,
		Quantity: 2, UnitPrice: 95, Status: models.StatusPending,
	}
	if err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Below the 90.00 floor
	bad := &models.Request{PartnerID: partner.ID, ProductID: product.ID, Quantity: 2, UnitPrice: 89, Status: models.StatusPending}
	var verr *ValidationError
	if err := svc.Update(context.Background(), req.ID, bad); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError on update below floor, got %v", err)
	}

	good := &models.Request{PartnerID: partner.ID, ProductID: product.ID, Quantity: 3, UnitPrice: 90, Status: models.StatusFulfilled}
	if err := svc.Update(context.Background(), req.ID, good); err != nil {
		t.Fatalf("update: %v", err)
	}
	var stored models.Request
	if err := db.First(&stored, req.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.TotalPrice != 270 {
		t.Errorf("expected recomputed total 270, got %v", stored.TotalPrice)
	}
	if stored.Status != models.StatusFulfilled {
		t.Errorf("expected status updated, got %q", stored.Status)
	}
}

func TestRequestUpdateUnknownID(t *testing.T) {
	db := setupTestDB(t)
	partner, product, _ := seedRequestFixtures(t, db, nil)

	svc := NewRequestService(db, stubFuncs{})
	req := &models.Request{PartnerID: partner.ID, ProductID: product.ID, Quantity: 1, UnitPrice: 10, Status: models.StatusPending}
	if err := svc.Update(context.Background(), 12345, req); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
