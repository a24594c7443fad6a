// internal/models/client.go
package models

import "time"

type Client struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FullName    string    `gorm:"size:150;not null" json:"full_name"`
	Email       string    `gorm:"size:150;not null" json:"email"`
	Phone       string    `gorm:"size:30" json:"phone"`
	CompanyName string    `gorm:"size:150" json:"company_name"`
	DateCreated time.Time `gorm:"type:date" json:"date_created"`
	LastContact time.Time `gorm:"type:date" json:"last_contact"`

	// Owning sales account. Set at creation, never reassigned.
	CommercialID uint  `gorm:"not null;index" json:"commercial_id"`
	Commercial   *User `gorm:"foreignKey:CommercialID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"commercial,omitempty"`
}

func (Client) TableName() string { return "clients" }
