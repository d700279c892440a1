package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/models"
)

// SupplyService owns supply creation: inserting the supply row and bumping
// the material's stock are a single transaction, and the stock change is a
// store-side relative update so concurrent supplies cannot lose increments.
type SupplyService struct {
	DB *gorm.DB
}

func NewSupplyService(gdb *gorm.DB) *SupplyService {
	return &SupplyService{DB: gdb}
}

// Create inserts the supply and increments the material's stock. Both
// writes commit together or not at all. Returns ErrNotFound when the
// referenced supplier, material or manager does not exist and
// ValidationError for a non-positive quantity.
func (s *SupplyService) Create(ctx context.Context, supply *models.Supply) error {
	if supply.Quantity <= 0 {
		return &ValidationError{Message: "Количество должно быть больше 0"}
	}
	if supply.SupplyDate.IsZero() {
		supply.SupplyDate = time.Now()
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Supplier{}).Where(`"SupplierID" = ?`, supply.SupplierID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.Manager{}).Where(`"ManagerID" = ?`, supply.ManagerID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		if err := tx.Create(supply).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Material{}).
			Where(`"MaterialID" = ?`, supply.MaterialID).
			UpdateColumn("QuantityInStock", gorm.Expr(`"QuantityInStock" + ?`, supply.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Unknown material: roll the supply insert back with us.
			return ErrNotFound
		}
		return nil
	})
}
