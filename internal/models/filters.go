// internal/models/filters.go
package models

import "time"

// ContractStatus selects contracts by signature and payment state.
type ContractStatus string

const (
	ContractsAll      ContractStatus = "all"
	ContractsUnsigned ContractStatus = "unsigned"
	ContractsUnpaid   ContractStatus = "unpaid" // amount_due > 0
	ContractsSigned   ContractStatus = "signed"
	ContractsPaid     ContractStatus = "paid" // amount_due <= 0
)

// ContractFilter is combined with AND. Zero value lists everything.
type ContractFilter struct {
	Status       ContractStatus
	CommercialID *uint
	ClientID     *uint
}

// EventFilter is combined with AND. Zero value lists everything.
type EventFilter struct {
	SupportID      *uint      // assigned to this support account
	Unassigned     bool       // support_id IS NULL
	Assigned       bool       // support_id IS NOT NULL
	SupportOrNone  *uint      // support_id = X OR support_id IS NULL
	CommercialID   *uint      // events of contracts owned by this sales account
	StartAtOrAfter *time.Time // date_start >= t
	EndBefore      *time.Time // date_end < t
}
