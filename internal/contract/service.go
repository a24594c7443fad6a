package contract

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/store"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

// ClientFinder resolves the client a contract belongs to.
type ClientFinder interface {
	FindByID(db *gorm.DB, id uint) (*models.Client, error)
}

// AccountFinder resolves the sales account a contract is assigned to.
type AccountFinder interface {
	FindByID(db *gorm.DB, id uint) (*models.User, error)
}

type Service struct {
	Store      store.Runner
	Repository Repository
	Clients    ClientFinder
	Accounts   AccountFinder
	Now        func() time.Time
}

func NewService(runner store.Runner, repo Repository, clients ClientFinder, accounts AccountFinder) *Service {
	return &Service{Store: runner, Repository: repo, Clients: clients, Accounts: accounts, Now: time.Now}
}

// Create inserts an unsigned contract whose amount due equals its total.
// Optional AmountDue / IsSigned are applied right after, in the same session.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateContractRequest) (*models.Contract, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Contract, policy.Target{}); err != nil {
		return nil, err
	}
	if err := validateAmounts(req.TotalAmount, req.AmountDue); err != nil {
		return nil, err
	}

	c := &models.Contract{
		ClientID:     req.ClientID,
		CommercialID: req.CommercialID,
		TotalAmount:  req.TotalAmount,
		AmountDue:    req.TotalAmount,
		IsSigned:     false,
		DateCreated:  utils.DateOf(s.Now()),
	}
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		client, err := s.Clients.FindByID(db, req.ClientID)
		if err != nil {
			return err
		}
		if err := s.checkSalesAccount(db, req.CommercialID); err != nil {
			return err
		}
		if err := s.Repository.Save(db, c); err != nil {
			return err
		}
		c.Client = client

		var columns []string
		if req.AmountDue != nil && !req.AmountDue.Equal(c.AmountDue) {
			c.AmountDue = *req.AmountDue
			columns = append(columns, "amount_due")
		}
		if req.IsSigned != nil && *req.IsSigned != c.IsSigned {
			c.IsSigned = *req.IsSigned
			columns = append(columns, "is_signed")
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

// Update applies the fields present in req. Sales accounts may only touch
// their own contracts and never reassign them.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uint, req UpdateContractRequest) (*models.Contract, error) {
	var c *models.Contract
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		if c, err = s.Repository.FindByID(db, id); err != nil {
			return err
		}
		if err := policy.Authorize(actor, policy.Update, policy.Contract, policy.Target{OwnerID: c.CommercialID}); err != nil {
			return err
		}

		var columns []string
		if req.CommercialID != nil && *req.CommercialID != c.CommercialID {
			if err := policy.Authorize(actor, policy.Assign, policy.Contract, policy.Target{OwnerID: c.CommercialID}); err != nil {
				return err
			}
			if err := s.checkSalesAccount(db, *req.CommercialID); err != nil {
				return err
			}
			c.CommercialID = *req.CommercialID
			c.Commercial = nil
			columns = append(columns, "commercial_id")
		}
		if req.TotalAmount != nil && !req.TotalAmount.Equal(c.TotalAmount) {
			c.TotalAmount = *req.TotalAmount
			columns = append(columns, "total_amount")
		}
		if req.AmountDue != nil && !req.AmountDue.Equal(c.AmountDue) {
			c.AmountDue = *req.AmountDue
			columns = append(columns, "amount_due")
		}
		if req.IsSigned != nil && *req.IsSigned != c.IsSigned {
			c.IsSigned = *req.IsSigned
			columns = append(columns, "is_signed")
		}
		if err := validateAmounts(c.TotalAmount, &c.AmountDue); err != nil {
			return err
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

// List returns the contracts matching filter. Sales accounts only ever get
// their own contracts, whatever the filter says.
func (s *Service) List(ctx context.Context, actor policy.Actor, filter models.ContractFilter) ([]models.Contract, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Contract, policy.Target{}); err != nil {
		return nil, err
	}
	var list []models.Contract
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		list, err = s.Repository.List(db, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	if owner := policy.OwnerScope(actor, policy.Contract); owner != nil {
		visible := list[:0]
		for _, c := range list {
			if c.CommercialID == *owner {
				visible = append(visible, c)
			}
		}
		list = visible
	}
	return list, nil
}

// Get returns one contract if actor may see it.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id uint) (*models.Contract, error) {
	var c *models.Contract
	err := s.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		c, err = s.Repository.FindByID(db, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if owner := policy.OwnerScope(actor, policy.Contract); owner != nil && *owner != c.CommercialID {
		return nil, apperr.Denied("you can only view your own contracts")
	}
	return c, nil
}

// Signed lists the signed contracts of the acting sales account, i.e. the
// contracts an event can be created from.
func (s *Service) Signed(ctx context.Context, actor policy.Actor) ([]models.Contract, error) {
	if !policy.Offers(actor.Role, policy.Create, policy.Event) {
		return nil, apperr.Denied("role %s cannot create events", actor.Role.Label())
	}
	id := actor.ID
	return s.List(ctx, actor, models.ContractFilter{Status: models.ContractsSigned, CommercialID: &id})
}

func (s *Service) checkSalesAccount(db *gorm.DB, id uint) error {
	u, err := s.Accounts.FindByID(db, id)
	if err != nil {
		return err
	}
	if u.Role != models.RoleSales {
		return apperr.Invalid("commercial_id", "account %d is not a sales account", id)
	}
	return nil
}

func validateAmounts(total decimal.Decimal, due *decimal.Decimal) error {
	if total.IsNegative() {
		return apperr.Invalid("total_amount", "must not be negative")
	}
	if due == nil {
		return nil
	}
	if due.IsNegative() {
		return apperr.Invalid("amount_due", "must not be negative")
	}
	if due.GreaterThan(total) {
		return apperr.Invalid("amount_due", "%s exceeds the total amount %s", due.StringFixed(2), total.StringFixed(2))
	}
	return nil
}
