package event

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store"
)

// ContractFinder resolves the contract an event is created from.
type ContractFinder interface {
	FindByID(db *gorm.DB, id uint) (*models.Contract, error)
}

// AccountFinder resolves support accounts on assignment.
type AccountFinder interface {
	FindByID(db *gorm.DB, id uint) (*models.User, error)
}

type Service struct {
	Store      store.Runner
	Repository Repository
	Contracts  ContractFinder
	Accounts   AccountFinder
}

func NewService(runner store.Runner, repo Repository, contracts ContractFinder, accounts AccountFinder) *Service {
	return &Service{Store: runner, Repository: repo, Contracts: contracts, Accounts: accounts}
}

// Create inserts an event for a signed contract owned by the acting sales
// account. The client is copied from the contract.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateEventRequest) (*models.Event, error) {
	if !policy.Offers(actor.Role, policy.Create, policy.Event) {
		return nil, policy.Authorize(actor, policy.Create, policy.Event, policy.Target{})
	}

	e := &models.Event{
		Name:       strings.TrimSpace(req.Name),
		ContractID: req.ContractID,
		DateStart:  req.DateStart,
		DateEnd:    req.DateEnd,
		Location:   strings.TrimSpace(req.Location),
		Attendees:  req.Attendees,
		Notes:      strings.TrimSpace(req.Notes),
	}
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		c, err := s.Contracts.FindByID(db, req.ContractID)
		if err != nil {
			return err
		}
		target := policy.Target{OwnerID: c.CommercialID, Signed: c.IsSigned}
		if err := policy.Authorize(actor, policy.Create, policy.Event, target); err != nil {
			return err
		}
		if err := validate(e); err != nil {
			return err
		}
		e.ClientID = c.ClientID
		if err := s.Repository.Save(db, e); err != nil {
			return err
		}
		e.Contract = c
		e.Client = c.Client
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies the fields present in req. Support accounts may update
// events assigned to them or unassigned; only management reassigns support.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateEventRequest) (*models.Event, error) {
	var e *models.Event
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		if e, err = s.Repository.FindByID(db, id); err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.Update, policy.Event, policy.Target{SupportID: e.SupportID}); err != nil {
			return err
		}

		columns, err := s.applySupport(db, actor, e, req)
		if err != nil {
			return err
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) != e.Name {
			e.Name = strings.TrimSpace(*req.Name)
			columns = append(columns, "name")
		}
		if req.DateStart != nil && !req.DateStart.Equal(e.DateStart) {
			e.DateStart = *req.DateStart
			columns = append(columns, "date_start")
		}
		if req.DateEnd != nil && !req.DateEnd.Equal(e.DateEnd) {
			e.DateEnd = *req.DateEnd
			columns = append(columns, "date_end")
		}
		if req.Location != nil && strings.TrimSpace(*req.Location) != e.Location {
			e.Location = strings.TrimSpace(*req.Location)
			columns = append(columns, "location")
		}
		if req.Attendees != nil && *req.Attendees != e.Attendees {
			e.Attendees = *req.Attendees
			columns = append(columns, "attendees")
		}
		if req.Notes != nil && strings.TrimSpace(*req.Notes) != e.Notes {
			e.Notes = strings.TrimSpace(*req.Notes)
			columns = append(columns, "notes")
		}
		if err := validate(e); err != nil {
			return err
		}
		if len(columns) == 0 {
			return nil
		}
		return s.Repository.Update(db, e, columns...)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) applySupport(db *gorm.DB, actor policy.Actor, e *models.Event, req UpdateEventRequest) ([]string, error) {
	switch {
	case req.UnassignSupport:
		if e.SupportID == nil {
			return nil, nil
		}
		if err := policy.Authorize(actor, policy.Assign, policy.Event, policy.Target{SupportID: e.SupportID}); err != nil {
			return nil, err
		}
		e.SupportID = nil
	case req.SupportID != nil:
		if e.SupportID != nil && *e.SupportID == *req.SupportID {
			return nil, nil
		}
		if err := policy.Authorize(actor, policy.Assign, policy.Event, policy.Target{SupportID: e.SupportID}); err != nil {
			return nil, err
		}
		u, err := s.Accounts.FindByID(db, *req.SupportID)
		if err != nil {
			return nil, err
		}
		if u.Role != models.RoleSupport {
			return nil, apperr.Invalid("support_id", "account %d is not a support account", u.ID)
		}
		id := u.ID
		e.SupportID = &id
	default:
		return nil, nil
	}
	e.Support = nil
	return []string{"support_id"}, nil
}

// List returns the events matching filter. Every role may read events.
func (s *Service) List(ctx context.Context, actor policy.Actor, filter models.EventFilter) ([]models.Event, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Event, policy.Target{}); err != nil {
		return nil, err
	}
	var list []models.Event
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		list, err = s.Repository.List(db, filter)
		return err
	})
	return list, err
}

// Get returns one event. Every role may read events.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Event, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Event, policy.Target{}); err != nil {
		return nil, err
	}
	var e *models.Event
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		e, err = s.Repository.FindByID(db, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Updatable lists the events actor may update: all of them for management,
// assigned-to-me or unassigned ones for support.
func (s *Service) Updatable(ctx context.Context, actor policy.Actor) ([]models.Event, error) {
	if !policy.Offers(actor.Role, policy.Update, policy.Event) {
		return nil, apperr.Denied("role %s cannot update events", actor.Role.Label())
	}
	var filter models.EventFilter
	if actor.Role == models.RoleSupport {
		id := actor.ID
		filter.SupportOrNone = &id
	}
	return s.List(ctx, actor, filter)
}

func validate(e *models.Event) error {
	if e.Name == "" {
		return apperr.Invalid("name", "is required")
	}
	if e.DateStart.IsZero() || e.DateEnd.IsZero() {
		return apperr.Invalid("date_start", "start and end dates are required")
	}
	if !e.DateEnd.After(e.DateStart) {
		return apperr.Invalid("date_end", "must be after the start date")
	}
	if e.Attendees < 0 {
		return apperr.Invalid("attendees", "must not be negative")
	}
	return nil
}
