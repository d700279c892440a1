package models

// Role controls which routes a user may access.
type Role string

const (
	RoleManager Role = "manager"
	RoleAnalyst Role = "analyst"
	RolePartner Role = "partner"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleAnalyst, RolePartner:
		return true
	}
	return false
}

// User represents an authenticated user in the system.
// Column names match the legacy PartnerManagement schema.
type User struct {
	ID       uint   `gorm:"column:UserID;primaryKey" json:"id"`
	Username string `gorm:"column:Username;size:100;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"column:Email;size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"column:Password;size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role     Role   `gorm:"column:Role;size:20;not null" json:"role"`
	// PartnerID links a partner-role user to the partner company it belongs to.
	// Required when Role is "partner", nil otherwise.
	PartnerID *uint    `gorm:"column:PartnerID;index" json:"partner_id,omitempty"`
	Partner   *Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (User) TableName() string { return "Users" }
