package user

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

// OwnershipCounter counts the clients or contracts owned by a sales account.
type OwnershipCounter interface {
	CountByCommercial(db *gorm.DB, commercialID uint) (int64, error)
}

// AssignmentCounter counts the events assigned to a support account.
type AssignmentCounter interface {
	CountBySupport(db *gorm.DB, supportID uint) (int64, error)
}

type Service struct {
	Store      store.Runner
	Repository Repository
	Clients    OwnershipCounter
	Contracts  OwnershipCounter
	Events     AssignmentCounter
}

func NewService(runner store.Runner, repo Repository, clients, contracts OwnershipCounter, events AssignmentCounter) *Service {
	return &Service{Store: runner, Repository: repo, Clients: clients, Contracts: contracts, Events: events}
}

// Create registers a new account. Only management may create accounts.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateUserRequest) (*models.User, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Account, policy.Target{}); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

// Bootstrap creates the first management account. It is refused once any
// management account exists.
func (s *Service) Bootstrap(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Role = models.RoleManagement
	var exists bool
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		n, err := s.Repository.CountByRole(db, models.RoleManagement)
		exists = n > 0
		return err
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("a management account already exists: %w", apperr.ErrConflict)
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	u := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  req.Role,
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperr.Invalid("password", "is required")
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash

	err = s.Store.Run(ctx, func(db *gorm.DB) error {
		if err := s.checkEmail(db, u.Email, 0); err != nil {
			return err
		}
		return s.Repository.Save(db, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies the fields present in req. A new password is hashed
// before it reaches the store. The role of a still referenced account
// cannot change.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateUserRequest) (*models.User, error) {
	if err := policy.Authorize(actor, policy.Update, policy.Account, policy.Target{ID: id}); err != nil {
		return nil, err
	}

	var hash string
	if req.Password != nil {
		if *req.Password == "" {
			return nil, apperr.Invalid("password", "is required")
		}
		var err error
		if hash, err = utils.HashPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	var u *models.User
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		if u, err = s.Repository.FindByID(db, id); err != nil {
			return err
		}

		var columns []string
		if req.Name != nil && strings.TrimSpace(*req.Name) != u.Name {
			u.Name = strings.TrimSpace(*req.Name)
			columns = append(columns, "name")
		}
		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			if email != u.Email {
				if err := s.checkEmail(db, email, u.ID); err != nil {
					return err
				}
				u.Email = email
				columns = append(columns, "email")
			}
		}
		if req.Role != nil && *req.Role != u.Role {
			// Owned clients, contracts and assigned events depend on the role.
			assoc, err := s.associations(db, id)
			if err != nil {
				return err
			}
			if assoc.Any() {
				return assoc
			}
			u.Role = *req.Role
			columns = append(columns, "role")
		}
		if hash != "" {
			u.Password = hash
			columns = append(columns, "password")
		}
		if err := validate(u); err != nil {
			return err
		}
		if len(columns) == 0 {
			return nil
		}
		return s.Repository.Update(db, u, columns...)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CheckAssociations counts the rows still referencing account id.
func (s *Service) CheckAssociations(ctx context.Context, actor policy.Actor, id uint) (*apperr.AssociationError, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Account, policy.Target{ID: id}); err != nil {
		return nil, err
	}
	var assoc *apperr.AssociationError
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		assoc, err = s.associations(db, id)
		return err
	})
	return assoc, err
}

// Delete removes account id. It is refused for the acting account and for
// any account still referenced by a client, contract or event.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	if err := policy.Authorize(actor, policy.Delete, policy.Account, policy.Target{ID: id}); err != nil {
		return nil, err
	}
	var u *models.User
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		if u, err = s.Repository.FindByID(db, id); err != nil {
			return err
		}
		assoc, err := s.associations(db, id)
		if err != nil {
			return err
		}
		if assoc.Any() {
			return assoc
		}
		return s.Repository.Delete(db, id)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List returns every account.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	return s.list(ctx, actor, nil)
}

// ListByRole returns the accounts holding role, e.g. the sales accounts a
// contract can be assigned to.
func (s *Service) ListByRole(ctx context.Context, actor policy.Actor, role models.Role) ([]models.User, error) {
	return s.list(ctx, actor, &role)
}

func (s *Service) list(ctx context.Context, actor policy.Actor, role *models.Role) ([]models.User, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Account, policy.Target{}); err != nil {
		return nil, err
	}
	var list []models.User
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		list, err = s.Repository.List(db, role)
		return err
	})
	return list, err
}

func (s *Service) associations(db *gorm.DB, id uint) (*apperr.AssociationError, error) {
	var (
		a   apperr.AssociationError
		err error
	)
	if a.ClientsCount, err = s.Clients.CountByCommercial(db, id); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if a.ContractsCount, err = s.Contracts.CountByCommercial(db, id); err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}
	if a.EventsCount, err = s.Events.CountBySupport(db, id); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	return &a, nil
}

func (s *Service) checkEmail(db *gorm.DB, email string, exceptID uint) error {
	taken, err := s.Repository.EmailTaken(db, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("email %q is already used: %w", email, apperr.ErrConflict)
	}
	return nil
}

func validate(u *models.User) error {
	if u.Name == "" {
		return apperr.Invalid("name", "is required")
	}
	if !utils.ValidEmail(u.Email) {
		return apperr.Invalid("email", "%q is not a valid address", u.Email)
	}
	if !u.Role.Valid() {
		return apperr.Invalid("role", "unknown role %q", u.Role)
	}
	return nil
}
