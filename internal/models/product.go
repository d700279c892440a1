package models

import "time"

// Product is a manufactured item offered to partners.
type Product struct {
	ID                  uint      `gorm:"column:ProductID;primaryKey" json:"id"`
	Name                string    `gorm:"column:Name;size:255;not null" json:"name"`
	Description         string    `gorm:"column:Description;size:1000" json:"description,omitempty"`
	StandardNumber      string    `gorm:"column:StandardNumber;size:100" json:"standard_number,omitempty"`
	ManufactureTimeDays *int      `gorm:"column:ManufactureTimeDays" json:"manufacture_time_days,omitempty"`
	CostPrice           *float64  `gorm:"column:CostPrice" json:"cost_price,omitempty"`
	MinPartnerPrice     *float64  `gorm:"column:MinPartnerPrice" json:"min_partner_price,omitempty"`
	CreatedAt           time.Time `gorm:"column:CreatedAt" json:"created_at"`
}

func (Product) TableName() string { return "Products" }

// ProductComposition links a product to a material with a quantity weight.
// Unique per (product, material) pair.
type ProductComposition struct {
	ProductID  uint    `gorm:"column:ProductID;primaryKey;autoIncrement:false" json:"product_id"`
	MaterialID uint    `gorm:"column:MaterialID;primaryKey;autoIncrement:false" json:"material_id"`
	Quantity   float64 `gorm:"column:Quantity;not null" json:"quantity"`

	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
}

func (ProductComposition) TableName() string { return "ProductComposition" }
