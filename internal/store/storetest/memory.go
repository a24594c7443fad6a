// Package storetest is an in-memory record store for service tests. It
// implements every repository interface structurally and a Runner that
// calls fn with a nil session.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
)

type Store struct {
	mu     sync.Mutex
	nextID uint

	users     map[uint]models.User
	clients   map[uint]models.Client
	contracts map[uint]models.Contract
	events    map[uint]models.Event

	// Runs counts sessions, Writes counts inserts, updates and deletes.
	Runs   int
	Writes int
	// Fail, when set, is returned by every write.
	Fail error
}

func New() *Store {
	return &Store{
		users:     map[uint]models.User{},
		clients:   map[uint]models.Client{},
		contracts: map[uint]models.Contract{},
		events:    map[uint]models.Event{},
	}
}

func (s *Store) Run(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.Runs++
	s.mu.Unlock()
	return fn(nil)
}

func (s *Store) Users() *Users         { return &Users{s} }
func (s *Store) Clients() *Clients     { return &Clients{s} }
func (s *Store) Contracts() *Contracts { return &Contracts{s} }
func (s *Store) Events() *Events       { return &Events{s} }

func (s *Store) write() error {
	if s.Fail != nil {
		return s.Fail
	}
	s.Writes++
	return nil
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, apperr.ErrNotFound)
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Users implements the account repository.
type Users struct{ s *Store }

func (r *Users) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedKeys(r.s.users) {
		if u := r.s.users[id]; strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("account", email)
}

func (r *Users) FindByID(_ *gorm.DB, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return &u, nil
}

func (r *Users) Save(_ *gorm.DB, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write(); err != nil {
		return err
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) List(_ *gorm.DB, role *models.Role) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []models.User
	for _, id := range sortedKeys(r.s.users) {
		if u := r.s.users[id]; role == nil || u.Role == *role {
			list = append(list, u)
		}
	}
	return list, nil
}

func (r *Users) Update(_ *gorm.DB, u *models.User, _ ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return notFound("account", u.ID)
	}
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) Delete(_ *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write(); err != nil {
		return err
	}
	delete(r.s.users, id)
	return nil
}

func (r *Users) EmailTaken(_ *gorm.DB, email string, exceptID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) CountByRole(_ *gorm.DB, role models.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Clients implements the client repository.
type Clients struct{ s *Store }

func (r *Clients) Save(_ *gorm.DB, c *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write(); err != nil {
		return err
	}
	c.ID = r.s.id()
	stored := *c
	stored.Commercial = nil
	r.s.clients[c.ID] = stored
	return nil
}

func (r *Clients) FindByID(_ *gorm.DB, id uint) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	r.s.loadClient(&c)
	return &c, nil
}

func (r *Clients) List(_ *gorm.DB, commercialID *uint) ([]models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []models.Client
	for _, id := range sortedKeys(r.s.clients) {
		c := r.s.clients[id]
		if commercialID != nil && c.CommercialID != *commercialID {
			continue
		}
		r.s.loadClient(&c)
		list = append(list, c)
	}
	return list, nil
}

func (r *Clients) Update(_ *gorm.DB, c *models.Client, _ ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return notFound("client", c.ID)
	}
	if err := r.s.write(); err != nil {
		return err
	}
	stored := *c
	stored.Commercial = nil
	r.s.clients[c.ID] = stored
	return nil
}

func (r *Clients) CountByCommercial(_ *gorm.DB, commercialID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.clients {
		if c.CommercialID == commercialID {
			n++
		}
	}
	return n, nil
}

func (s *Store) loadClient(c *models.Client) {
	if u, ok := s.users[c.CommercialID]; ok {
		c.Commercial = &u
	}
}

// Contracts implements the contract repository.
type Contracts struct{ s *Store }

func (r *Contracts) Save(_ *gorm.DB, c *models.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write(); err != nil {
		return err
	}
	c.ID = r.s.id()
	r.s.contracts[c.ID] = bare(*c)
	return nil
}

func (r *Contracts) FindByID(_ *gorm.DB, id uint) (*models.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, notFound("contract", id)
	}
	r.s.loadContract(&c)
	return &c, nil
}

func (r *Contracts) List(_ *gorm.DB, filter models.ContractFilter) ([]models.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []models.Contract
	for _, id := range sortedKeys(r.s.contracts) {
		c := r.s.contracts[id]
		if !matchContract(c, filter) {
			continue
		}
		r.s.loadContract(&c)
		list = append(list, c)
	}
	return list, nil
}

func (r *Contracts) Update(_ *gorm.DB, c *models.Contract, _ ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; !ok {
		return notFound("contract", c.ID)
	}
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.contracts[c.ID] = bare(*c)
	return nil
}

func (r *Contracts) CountByCommercial(_ *gorm.DB, commercialID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.contracts {
		if c.CommercialID == commercialID {
			n++
		}
	}
	return n, nil
}

func bare(c models.Contract) models.Contract {
	c.Client = nil
	c.Commercial = nil
	return c
}

func matchContract(c models.Contract, f models.ContractFilter) bool {
	switch f.Status {
	case models.ContractsUnsigned:
		if c.IsSigned {
			return false
		}
	case models.ContractsSigned:
		if !c.IsSigned {
			return false
		}
	case models.ContractsUnpaid:
		if !c.AmountDue.IsPositive() {
			return false
		}
	case models.ContractsPaid:
		if c.AmountDue.IsPositive() {
			return false
		}
	}
	if f.CommercialID != nil && c.CommercialID != *f.CommercialID {
		return false
	}
	if f.ClientID != nil && c.ClientID != *f.ClientID {
		return false
	}
	return true
}

func (s *Store) loadContract(c *models.Contract) {
	if cl, ok := s.clients[c.ClientID]; ok {
		c.Client = &cl
	}
	if u, ok := s.users[c.CommercialID]; ok {
		c.Commercial = &u
	}
}

// Events implements the event repository.
type Events struct{ s *Store }

func (r *Events) Save(_ *gorm.DB, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write(); err != nil {
		return err
	}
	e.ID = r.s.id()
	r.s.events[e.ID] = bareEvent(*e)
	return nil
}

func (r *Events) FindByID(_ *gorm.DB, id uint) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, notFound("event", id)
	}
	r.s.loadEvent(&e)
	return &e, nil
}

func (r *Events) List(_ *gorm.DB, filter models.EventFilter) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []models.Event
	for _, id := range sortedKeys(r.s.events) {
		e := r.s.events[id]
		if !r.s.matchEvent(e, filter) {
			continue
		}
		r.s.loadEvent(&e)
		list = append(list, e)
	}
	return list, nil
}

func (r *Events) Update(_ *gorm.DB, e *models.Event, _ ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return notFound("event", e.ID)
	}
	if err := r.s.write(); err != nil {
		return err
	}
	r.s.events[e.ID] = bareEvent(*e)
	return nil
}

func (r *Events) CountBySupport(_ *gorm.DB, supportID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.events {
		if e.SupportID != nil && *e.SupportID == supportID {
			n++
		}
	}
	return n, nil
}

func bareEvent(e models.Event) models.Event {
	e.Contract = nil
	e.Client = nil
	e.Support = nil
	if e.SupportID != nil {
		id := *e.SupportID
		e.SupportID = &id
	}
	return e
}

func (s *Store) matchEvent(e models.Event, f models.EventFilter) bool {
	if f.SupportID != nil && (e.SupportID == nil || *e.SupportID != *f.SupportID) {
		return false
	}
	if f.Unassigned && e.SupportID != nil {
		return false
	}
	if f.Assigned && e.SupportID == nil {
		return false
	}
	if f.SupportOrNone != nil && e.SupportID != nil && *e.SupportID != *f.SupportOrNone {
		return false
	}
	if f.CommercialID != nil && s.contracts[e.ContractID].CommercialID != *f.CommercialID {
		return false
	}
	if f.StartAtOrAfter != nil && e.DateStart.Before(*f.StartAtOrAfter) {
		return false
	}
	if f.EndBefore != nil && !e.DateEnd.Before(*f.EndBefore) {
		return false
	}
	return true
}

func (s *Store) loadEvent(e *models.Event) {
	if c, ok := s.contracts[e.ContractID]; ok {
		s.loadContract(&c)
		e.Contract = &c
	}
	if cl, ok := s.clients[e.ClientID]; ok {
		e.Client = &cl
	}
	if e.SupportID != nil {
		if u, ok := s.users[*e.SupportID]; ok {
			e.Support = &u
		}
	}
}

// AddUser inserts an account directly, bypassing the services.
func (s *Store) AddUser(name, email string, role models.Role) models.User {
	u := models.User{Name: name, Email: email, Role: role}
	_ = s.Users().Save(nil, &u)
	return u
}
