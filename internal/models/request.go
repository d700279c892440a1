package models

import "time"

// StatusFulfilled marks a sales request the partner has already received.
// Kept in Russian for compatibility with the data already in the store.
const StatusFulfilled = "Выполнена"

// StatusPending is the status assigned to newly created requests.
const StatusPending = "pending"

// Request is a sales order placed for a partner.
type Request struct {
	ID        uint    `gorm:"column:RequestID;primaryKey" json:"id"`
	PartnerID uint    `gorm:"column:PartnerID;not null;index" json:"partner_id"`
	ManagerID uint    `gorm:"column:ManagerID;not null" json:"manager_id"`
	ProductID uint    `gorm:"column:ProductID;not null;index" json:"product_id"`
	Quantity  float64 `gorm:"column:Quantity;not null" json:"quantity"`
	UnitPrice float64 `gorm:"column:UnitPrice;not null" json:"unit_price"`
	// TotalPrice is derived as Quantity * UnitPrice whenever the row is written.
	TotalPrice float64   `gorm:"column:TotalPrice;not null" json:"total_price"`
	Status     string    `gorm:"column:Status;size:50;not null" json:"status"`
	CreatedAt  time.Time `gorm:"column:CreatedAt" json:"created_at"`

	Partner *Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Manager *Manager `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Request) TableName() string { return "Requests" }
