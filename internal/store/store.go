// Package store scopes one database session per logical operation.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
)

// Runner acquires a session, runs fn inside it and releases it whatever
// the outcome. With the gorm runner the session is a transaction, so a
// check-then-mutate sequence observes and writes the same state.
type Runner interface {
	Run(ctx context.Context, fn func(db *gorm.DB) error) error
}

type GormRunner struct {
	DB *gorm.DB
}

func NewRunner(db *gorm.DB) *GormRunner {
	return &GormRunner{DB: db}
}

func (r *GormRunner) Run(ctx context.Context, fn func(db *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

// NotFound maps gorm.ErrRecordNotFound to apperr.ErrNotFound.
func NotFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, apperr.ErrNotFound)
	}
	return err
}
