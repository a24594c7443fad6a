// internal/models/contract.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Contract struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	// Sales account in charge of the contract, chosen by management.
	CommercialID uint  `gorm:"not null;index" json:"commercial_id"`
	Commercial   *User `gorm:"foreignKey:CommercialID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"commercial,omitempty"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	AmountDue   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount_due"`
	DateCreated time.Time       `gorm:"type:date" json:"date_created"`
	IsSigned    bool            `gorm:"not null;default:false" json:"is_signed"`
}

func (Contract) TableName() string { return "contracts" }

// FullyPaid reports whether nothing is left to pay.
func (c Contract) FullyPaid() bool {
	return !c.AmountDue.IsPositive()
}
