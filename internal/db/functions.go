package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// StoredFuncs is the interface to the stored database functions the
// application delegates its business math to. The functions live in the
// database and are maintained outside this codebase; everything here treats
// them as an external service with a fixed signature.
type StoredFuncs interface {
	// PartnerDiscount returns the partner's discount as a fraction in [0,1).
	PartnerDiscount(ctx context.Context, tx *gorm.DB, partnerID uint) (float64, error)
	// RequiredMaterial computes the material quantity needed to produce the
	// given product quantity, including the two process parameters.
	RequiredMaterial(ctx context.Context, tx *gorm.DB, productID, materialID uint, quantity int, param1, param2 float64) (float64, error)
	// DiscountExpr returns the SQL expression that evaluates a partner row's
	// discount, for use in SELECT lists and ORDER BY clauses. Sorting by
	// discount must happen in the query itself to stay correct under any
	// future pagination.
	DiscountExpr() string
}

// SQLFuncs calls the stored functions of the production database.
type SQLFuncs struct{}

func (SQLFuncs) PartnerDiscount(ctx context.Context, tx *gorm.DB, partnerID uint) (float64, error) {
	var discount *float64
	if err := tx.WithContext(ctx).Raw("SELECT fn_GetPartnerDiscount(?)", partnerID).Scan(&discount).Error; err != nil {
		return 0, fmt.Errorf("fn_GetPartnerDiscount(%d): %w", partnerID, err)
	}
	if discount == nil {
		return 0, nil
	}
	return *discount, nil
}

func (SQLFuncs) RequiredMaterial(ctx context.Context, tx *gorm.DB, productID, materialID uint, quantity int, param1, param2 float64) (float64, error) {
	var result *float64
	err := tx.WithContext(ctx).
		Raw("SELECT fn_CalcRequiredMaterial(?, ?, ?, ?, ?)", productID, materialID, quantity, param1, param2).
		Scan(&result).Error
	if err != nil {
		return 0, fmt.Errorf("fn_CalcRequiredMaterial: %w", err)
	}
	if result == nil {
		return 0, nil
	}
	return *result, nil
}

func (SQLFuncs) DiscountExpr() string {
	return `fn_GetPartnerDiscount("Partners"."PartnerID")`
}
