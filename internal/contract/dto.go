// internal/contract/dto.go
package contract

import "github.com/shopspring/decimal"

// CreateContractRequest is filled by management. AmountDue and IsSigned are
// optional; without them the contract starts unsigned with nothing paid.
type CreateContractRequest struct {
	ClientID     uint
	CommercialID uint
	TotalAmount  decimal.Decimal
	AmountDue    *decimal.Decimal
	IsSigned     *bool
}

// UpdateContractRequest is a partial update.
// CommercialID reassigns the contract and is reserved to management.
type UpdateContractRequest struct {
	TotalAmount  *decimal.Decimal
	AmountDue    *decimal.Decimal
	IsSigned     *bool
	CommercialID *uint
}
