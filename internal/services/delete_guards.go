package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/models"
)

// Referential guards: each delete runs its existence check and the delete
// in one transaction, so a row referencing the target cannot appear between
// the check and the delete.

// DeletePartner removes a partner unless users still reference it.
func DeletePartner(ctx context.Context, gdb *gorm.DB, partnerID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where(`"PartnerID" = ?`, partnerID).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return &ConflictError{Message: "Нельзя удалить партнёра, так как к нему привязаны пользователи"}
		}
		res := tx.Delete(&models.Partner{}, partnerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteProduct removes a product unless requests still reference it.
func DeleteProduct(ctx context.Context, gdb *gorm.DB, productID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requests int64
		if err := tx.Model(&models.Request{}).Where(`"ProductID" = ?`, productID).Count(&requests).Error; err != nil {
			return err
		}
		if requests > 0 {
			return &ConflictError{Message: "Нельзя удалить продукт, так как он используется в заявках"}
		}
		res := tx.Delete(&models.Product{}, productID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteComposition removes a product-material link unless the product is
// still referenced by requests.
func DeleteComposition(ctx context.Context, gdb *gorm.DB, productID, materialID uint) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requests int64
		if err := tx.Model(&models.Request{}).Where(`"ProductID" = ?`, productID).Count(&requests).Error; err != nil {
			return err
		}
		if requests > 0 {
			return &ConflictError{Message: "Нельзя удалить связь, так как продукт используется в заявках"}
		}
		res := tx.Where(`"ProductID" = ? AND "MaterialID" = ?`, productID, materialID).Delete(&models.ProductComposition{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
