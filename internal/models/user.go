// internal/models/user.go
package models

import "time"

// Role identifies what an account is allowed to do.
type Role string

const (
	RoleSales      Role = "commercial"
	RoleSupport    Role = "support"
	RoleManagement Role = "gestion"
)

// Roles lists every role in menu order.
var Roles = []Role{RoleSales, RoleSupport, RoleManagement}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleSupport, RoleManagement:
		return true
	}
	return false
}

// Label is the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleSales:
		return "Sales"
	case RoleSupport:
		return "Support"
	case RoleManagement:
		return "Management"
	}
	return string(r)
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never the plaintext
	Role      Role      `gorm:"size:20;not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
