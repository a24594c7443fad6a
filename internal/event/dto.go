// internal/event/dto.go
package event

import "time"

// CreateEventRequest describes a new event. Client and contract linkage are
// taken from the signed contract ContractID.
type CreateEventRequest struct {
	ContractID uint
	Name       string
	DateStart  time.Time
	DateEnd    time.Time
	Location   string
	Attendees  int
	Notes      string
}

// UpdateEventRequest is a partial update. SupportID and UnassignSupport
// change the support assignment and are reserved to management.
type UpdateEventRequest struct {
	Name      *string
	DateStart *time.Time
	DateEnd   *time.Time
	Location  *string
	Attendees *int
	Notes     *string

	SupportID       *uint
	UnassignSupport bool
}
