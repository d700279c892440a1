package models

import "time"

// Supply records a delivery of material from a supplier.
// Creating a supply increments the material's stock in the same transaction.
type Supply struct {
	ID         uint      `gorm:"column:SupplyID;primaryKey" json:"id"`
	SupplierID uint      `gorm:"column:SupplierID;not null;index" json:"supplier_id"`
	MaterialID uint      `gorm:"column:MaterialID;not null;index" json:"material_id"`
	ManagerID  uint      `gorm:"column:ManagerID;not null" json:"manager_id"`
	Quantity   float64   `gorm:"column:Quantity;not null" json:"quantity"`
	SupplyDate time.Time `gorm:"column:SupplyDate;not null" json:"supply_date"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Manager  *Manager  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

func (Supply) TableName() string { return "Supplies" }
