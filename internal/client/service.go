package client

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

type Service struct {
	Store      store.Runner
	Repository Repository
	Now        func() time.Time
}

func NewService(runner store.Runner, repo Repository) *Service {
	return &Service{Store: runner, Repository: repo, Now: time.Now}
}

// Create registers a client owned by the acting sales account.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateClientRequest) (*models.Client, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Client, policy.Target{}); err != nil {
		return nil, err
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateFields(req.FullName, req.Email); err != nil {
		return nil, err
	}

	today := utils.DateOf(s.Now())
	c := &models.Client{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		DateCreated:  today,
		LastContact:  today,
		CommercialID: actor.ID,
	}
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		return s.Repository.Save(db, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies the fields present in req and refreshes the last contact date.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateClientRequest) (*models.Client, error) {
	var c *models.Client
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		if c, err = s.Repository.FindByID(db, id); err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.Update, policy.Client, policy.Target{OwnerID: c.CommercialID}); err != nil {
			return err
		}

		var columns []string
		set := func(dst *string, v *string, column string) {
			if v == nil {
				return
			}
			if val := strings.TrimSpace(*v); val != *dst {
				*dst = val
				columns = append(columns, column)
			}
		}
		set(&c.FullName, req.FullName, "full_name")
		set(&c.Email, req.Email, "email")
		set(&c.Phone, req.Phone, "phone")
		set(&c.CompanyName, req.CompanyName, "company_name")
		if err := validateFields(c.FullName, c.Email); err != nil {
			return err
		}

		today := utils.DateOf(s.Now())
		if !utils.SameDay(c.LastContact, today) {
			c.LastContact = today
			columns = append(columns, "last_contact")
		}
		if len(columns) == 0 {
			return nil
		}
		return s.Repository.Update(db, c, columns...)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the clients visible to actor: sales accounts only see their own.
func (s *Service) List(ctx context.Context, actor policy.Actor) ([]models.Client, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Client, policy.Target{}); err != nil {
		return nil, err
	}
	var list []models.Client
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		list, err = s.Repository.List(db, policy.OwnerScope(actor, policy.Client))
		return err
	})
	return list, err
}

// Get returns one client if actor may see it.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Client, error) {
	var c *models.Client
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		c, err = s.Repository.FindByID(db, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if owner := policy.OwnerScope(actor, policy.Client); owner != nil && *owner != c.CommercialID {
		return nil, apperr.Denied("you can only view your own clients")
	}
	return c, nil
}

func validateFields(fullName, email string) error {
	if fullName == "" {
		return apperr.Invalid("full_name", "is required")
	}
	if email == "" {
		return apperr.Invalid("email", "is required")
	}
	if !utils.ValidEmail(email) {
		return apperr.Invalid("email", "%q is not a valid address", email)
	}
	return nil
}
