// Package auth verifies login credentials. There is no session token: each
// call is independent and the caller keeps the returned account for the
// lifetime of the interactive session.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/store"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

type AccountFinder interface {
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
}

type LoginRequest struct {
	Email    string
	Password string
}

type Verifier struct {
	Store    store.Runner
	Accounts AccountFinder
	Log      *slog.Logger
}

func NewVerifier(runner store.Runner, accounts AccountFinder, log *slog.Logger) *Verifier {
	return &Verifier{Store: runner, Accounts: accounts, Log: log}
}

// Authenticate returns the account matching the credentials. An unknown
// email and a wrong password both yield apperr.ErrAuthentication.
func (v *Verifier) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.ErrAuthentication
	}

	var u *models.User
	err := v.Store.Run(ctx, func(db *gorm.DB) error {
		var err error
		u, err = v.Accounts.FindByEmail(db, email)
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		v.Log.Info("login refused", "reason", "unknown email")
		return nil, apperr.ErrAuthentication
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		v.Log.Info("login refused", "reason", "wrong password", "user_id", u.ID)
		return nil, apperr.ErrAuthentication
	}
	v.Log.Info("login", "user_id", u.ID, "role", u.Role)
	return u, nil
}
