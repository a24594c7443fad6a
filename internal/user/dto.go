// internal/user/dto.go
package user

import "github.com/Hedi-Slm/epic-events/internal/models"

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// UpdateUserRequest is a partial update; Password is the new plaintext.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
}
