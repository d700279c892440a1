package models

// Material is a raw material kept in stock.
// QuantityInStock is only ever changed with store-side relative updates
// (stock = stock + delta) so concurrent supplies cannot lose increments.
type Material struct {
	ID                 uint    `gorm:"column:MaterialID;primaryKey" json:"id"`
	Name               string  `gorm:"column:Name;size:255;not null" json:"name"`
	Unit               string  `gorm:"column:Unit;size:50" json:"unit,omitempty"`
	Cost               float64 `gorm:"column:Cost" json:"cost"`
	QuantityInStock    float64 `gorm:"column:QuantityInStock;not null;default:0" json:"quantity_in_stock"`
	MinAllowedQuantity float64 `gorm:"column:MinAllowedQuantity;not null;default:0" json:"min_allowed_quantity"`
}

func (Material) TableName() string { return "Materials" }

// Supplier delivers materials.
type Supplier struct {
	ID   uint   `gorm:"column:SupplierID;primaryKey" json:"id"`
	Name string `gorm:"column:Name;size:255;not null" json:"name"`
}

func (Supplier) TableName() string { return "Suppliers" }

// Manager is a staff member who accepts supplies and sales requests.
type Manager struct {
	ID       uint   `gorm:"column:ManagerID;primaryKey" json:"id"`
	FullName string `gorm:"column:FullName;size:255;not null" json:"full_name"`
}

func (Manager) TableName() string { return "Managers" }
