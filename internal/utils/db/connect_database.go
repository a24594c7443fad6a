package db

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hedi-Slm/epic-events/internal/config"
)

// ConnectDataBase opens the gorm connection and pings the server.
func ConnectDataBase(ctx context.Context, cfg *config.Config, user, password string, log *slog.Logger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(cfg.DSN(user, password)), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.Log.Level)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("connected to PostgreSQL",
		slog.String("host", cfg.DB.Host),
		slog.Int("port", cfg.DB.Port),
		slog.String("database", cfg.DB.Name),
	)
	return database, nil
}

// Close releases the underlying connection pool.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	lvl, _ := config.ParseLogLevel(level)
	switch {
	case lvl <= slog.LevelDebug:
		return logger.Info
	case lvl <= slog.LevelWarn:
		return logger.Warn
	}
	return logger.Error
}
