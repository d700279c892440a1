package models

// Partner is a company in the partner network.
type Partner struct {
	ID           uint   `gorm:"column:PartnerID;primaryKey" json:"id"`
	Name         string `gorm:"column:Name;size:255;uniqueIndex;not null" json:"name"`
	LegalAddress string `gorm:"column:LegalAddress;size:500" json:"legal_address,omitempty"`
	// INN is the partner's tax identifier, 10 or 12 digits.
	INN              string   `gorm:"column:INN;size:12;uniqueIndex" json:"inn,omitempty"`
	DirectorFullName string   `gorm:"column:DirectorFullName;size:255" json:"director_full_name,omitempty"`
	Phone            string   `gorm:"column:Phone;size:20" json:"phone,omitempty"`
	Email            string   `gorm:"column:Email;size:255" json:"email,omitempty"`
	Rating           *float64 `gorm:"column:Rating" json:"rating,omitempty"` // 0..5

	Users []User `gorm:"foreignKey:PartnerID" json:"users,omitempty"`
}

func (Partner) TableName() string { return "Partners" }
