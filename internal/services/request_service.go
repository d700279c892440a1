package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/db"
	"github.com/diewo77/partner-admin/internal/models"
)

// RequestService owns the write path for sales requests. Both create and
// update enforce the price floor: the unit price may not drop below the
// product's minimum partner price reduced by the partner's discount. The
// floor is re-evaluated inside the same transaction as the write so the
// price and discount cannot change between check and insert.
type RequestService struct {
	DB    *gorm.DB
	Funcs db.StoredFuncs
}

func NewRequestService(gdb *gorm.DB, funcs db.StoredFuncs) *RequestService {
	return &RequestService{DB: gdb, Funcs: funcs}
}

// checkPriceFloor validates req.UnitPrice against the discounted minimum
// partner price, inside tx.
func (s *RequestService) checkPriceFloor(ctx context.Context, tx *gorm.DB, req *models.Request) error {
	var product models.Product
	if err := tx.WithContext(ctx).First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationError{Message: "Продукт не найден"}
		}
		return err
	}
	if product.MinPartnerPrice == nil {
		return nil
	}

	discount, err := s.Funcs.PartnerDiscount(ctx, tx, req.PartnerID)
	if err != nil {
		return err
	}
	floor := *product.MinPartnerPrice * (1 - discount)
	if req.UnitPrice < floor {
		return &ValidationError{Message: fmt.Sprintf(
			"Цена за единицу не может быть ниже %.2f (с учётом скидки %.0f%%)", floor, discount*100,
		)}
	}
	return nil
}

// Create validates the price floor and inserts the request with its derived
// total price, all in one transaction.
func (s *RequestService) Create(ctx context.Context, req *models.Request) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkPriceFloor(ctx, tx, req); err != nil {
			return err
		}
		if req.Status == "" {
			req.Status = models.StatusPending
		}
		req.TotalPrice = req.Quantity * req.UnitPrice
		return tx.Create(req).Error
	})
}

// Update re-validates the price floor and rewrites the request fields.
// Returns ErrNotFound when the request id does not exist.
func (s *RequestService) Update(ctx context.Context, id uint, req *models.Request) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkPriceFloor(ctx, tx, req); err != nil {
			return err
		}
		res := tx.Model(&models.Request{}).Where(`"RequestID" = ?`, id).Updates(map[string]any{
			"PartnerID":  req.PartnerID,
			"ProductID":  req.ProductID,
			"Quantity":   req.Quantity,
			"UnitPrice":  req.UnitPrice,
			"TotalPrice": req.Quantity * req.UnitPrice,
			"Status":     req.Status,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
