// Package policy decides who may create, read, update, delete or reassign
// each entity. Every service consults it before touching the store; menus
// consult Offers to hide actions a role can never perform.
package policy

import (
	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
)

type Action string

const (
	Create Action = "create"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
	// Assign changes who is responsible for a row: the sales account of a
	// contract or the support account of an event.
	Assign Action = "assign"
)

type Entity string

const (
	Account  Entity = "account"
	Client   Entity = "client"
	Contract Entity = "contract"
	Event    Entity = "event"
)

// Actor is the authenticated account performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// ActorOf builds the actor for a logged-in account.
func ActorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Target carries the ownership context of the row being acted on.
// For event creation it describes the source contract.
type Target struct {
	ID        uint  // account id (Account)
	OwnerID   uint  // commercial_id (Client, Contract)
	SupportID *uint // support_id (Event)
	Signed    bool  // is_signed (source contract of a new Event)
}

type rule struct {
	roles []models.Role
	check func(a Actor, t Target) error
}

func (r rule) allows(role models.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	sales      = models.RoleSales
	support    = models.RoleSupport
	management = models.RoleManagement
	everyone   = []models.Role{sales, support, management}
)

var rules = map[Entity]map[Action]rule{
	Account: {
		Create: {roles: []models.Role{management}},
		Read:   {roles: []models.Role{management}},
		Update: {roles: []models.Role{management}},
		Delete: {roles: []models.Role{management}, check: notSelf},
	},
	Client: {
		Create: {roles: []models.Role{sales}},
		Read:   {roles: everyone},
		Update: {roles: []models.Role{sales, management}, check: salesOwnsClient},
	},
	Contract: {
		Create: {roles: []models.Role{management}},
		Read:   {roles: everyone},
		Update: {roles: []models.Role{sales, management}, check: salesOwnsContract},
		Assign: {roles: []models.Role{management}},
	},
	Event: {
		Create: {roles: []models.Role{sales}, check: signedOwnContract},
		Read:   {roles: everyone},
		Update: {roles: []models.Role{support, management}, check: supportAssignedOrFree},
		Assign: {roles: []models.Role{management}},
	},
}

// Authorize returns nil when a may perform act on e, otherwise a
// *apperr.PermissionError explaining why not.
func Authorize(a Actor, act Action, e Entity, t Target) error {
	r, ok := rules[e][act]
	if !ok {
		return apperr.Denied("%s %s is not supported", act, e)
	}
	if !r.allows(a.Role) {
		return apperr.Denied("role %s cannot %s %ss", a.Role.Label(), act, e)
	}
	if r.check != nil {
		return r.check(a, t)
	}
	return nil
}

// Can is the boolean form of Authorize.
func Can(a Actor, act Action, e Entity, t Target) bool {
	return Authorize(a, act, e, t) == nil
}

// Offers reports whether role may ever perform act on e, ignoring ownership.
func Offers(role models.Role, act Action, e Entity) bool {
	r, ok := rules[e][act]
	return ok && r.allows(role)
}

// OwnerScope returns the owner id a listing must be restricted to, or nil
// when the actor sees every row. Sales accounts only see their own clients
// and contracts.
func OwnerScope(a Actor, e Entity) *uint {
	if a.Role != models.RoleSales {
		return nil
	}
	if e == Client || e == Contract {
		id := a.ID
		return &id
	}
	return nil
}

func notSelf(a Actor, t Target) error {
	if t.ID == a.ID {
		return apperr.Denied("you cannot delete your own account")
	}
	return nil
}

func salesOwnsClient(a Actor, t Target) error {
	if a.Role == models.RoleSales && t.OwnerID != a.ID {
		return apperr.Denied("you can only update your own clients")
	}
	return nil
}

func salesOwnsContract(a Actor, t Target) error {
	if a.Role == models.RoleSales && t.OwnerID != a.ID {
		return apperr.Denied("you can only update your own contracts")
	}
	return nil
}

func signedOwnContract(a Actor, t Target) error {
	if t.OwnerID != a.ID {
		return apperr.Denied("you can only create events for your own contracts")
	}
	if !t.Signed {
		return apperr.Denied("events can only be created from a signed contract")
	}
	return nil
}

func supportAssignedOrFree(a Actor, t Target) error {
	if a.Role == models.RoleSupport && t.SupportID != nil && *t.SupportID != a.ID {
		return apperr.Denied("you can only update events assigned to you or unassigned")
	}
	return nil
}
