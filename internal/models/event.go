// internal/models/event.go
package models

import "time"

type Event struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:150;not null" json:"name"`
	ContractID uint      `gorm:"not null;index" json:"contract_id"`
	Contract   *Contract `gorm:"foreignKey:ContractID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"contract,omitempty"`
	ClientID   uint      `gorm:"not null;index" json:"client_id"` // copied from the contract at creation
	Client     *Client   `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	// nil while no support account is assigned
	SupportID *uint `gorm:"index" json:"support_id"`
	Support   *User `gorm:"foreignKey:SupportID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"support,omitempty"`

	DateStart time.Time `gorm:"not null" json:"date_start"`
	DateEnd   time.Time `gorm:"not null" json:"date_end"`
	Location  string    `gorm:"size:255" json:"location"`
	Attendees int       `json:"attendees"`
	Notes     string    `gorm:"type:text" json:"notes"`
}

func (Event) TableName() string { return "events" }

// Unassigned reports whether no support account handles the event yet.
func (e Event) Unassigned() bool { return e.SupportID == nil }
