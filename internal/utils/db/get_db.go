package db

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/config"
)

// GetDB resolves the database credentials and connects.
func GetDB(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	username, password, err := retrieveCredentials(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return ConnectDataBase(ctx, cfg, username, password, log)
}
