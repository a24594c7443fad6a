// internal/client/dto.go
package client

// CreateClientRequest carries the fields typed in by the sales account.
type CreateClientRequest struct {
	FullName    string
	Email       string
	Phone       string // optional
	CompanyName string // optional
}

// UpdateClientRequest is a partial update.
// Pointer fields allow leaving a value untouched.
type UpdateClientRequest struct {
	FullName    *string
	Email       *string
	Phone       *string
	CompanyName *string
}
