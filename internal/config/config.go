// Package config loads the CRM settings: defaults, an optional YAML file,
// a .env file and EPIC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config path is given and the file exists.
const DefaultConfigFile = "epicevents.yaml"

// Version is overridden at build time with -ldflags.
var Version = "dev"

type Config struct {
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Security  SecurityConfig  `yaml:"security"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	// AWS Secrets Manager secret holding {"username","password"}; used
	// when User/Password are empty.
	SecretID string `yaml:"secret_id"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type TelemetryConfig struct {
	// Prometheus Pushgateway base URL. Empty disables pushing.
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
	// Receives a JSON alert for each unexpected error. Empty disables it.
	WebhookURL string `yaml:"webhook_url"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// DefaultConfig returns the settings used for a local PostgreSQL.
func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "epicevents",
			SSLMode: "disable",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Job: "epicevents",
		},
		Security: SecurityConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
	}
}

// Load builds the configuration. path may be empty; DefaultConfigFile is then
// used if present. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DB.Host = getenv("EPIC_DB_HOST", c.DB.Host)
	c.DB.Name = getenv("EPIC_DB_NAME", c.DB.Name)
	c.DB.User = getenv("EPIC_DB_USER", c.DB.User)
	c.DB.Password = getenv("EPIC_DB_PASSWORD", c.DB.Password)
	c.DB.SSLMode = getenv("EPIC_DB_SSL_MODE", c.DB.SSLMode)
	c.DB.SecretID = getenv("EPIC_DB_SECRET_ID", c.DB.SecretID)
	c.Log.Level = getenv("EPIC_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("EPIC_LOG_FORMAT", c.Log.Format)
	c.Telemetry.PushgatewayURL = getenv("EPIC_PUSHGATEWAY_URL", c.Telemetry.PushgatewayURL)
	c.Telemetry.WebhookURL = getenv("EPIC_ALERT_WEBHOOK_URL", c.Telemetry.WebhookURL)

	var err error
	if c.DB.Port, err = getenvInt("EPIC_DB_PORT", c.DB.Port); err != nil {
		return err
	}
	if c.Security.BcryptCost, err = getenvInt("EPIC_BCRYPT_COST", c.Security.BcryptCost); err != nil {
		return err
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.DB.Host == "" {
		return errors.New("db.host is required")
	}
	if c.DB.Name == "" {
		return errors.New("db.name is required")
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		return fmt.Errorf("db.port: %d out of range 1-65535", c.DB.Port)
	}
	if (c.DB.User == "" || c.DB.Password == "") && c.DB.SecretID == "" {
		return errors.New("db.user and db.password are required unless db.secret_id is set")
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: invalid value %q, expected text or json", c.Log.Format)
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost: %d out of range %d-%d", c.Security.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// DSN returns the PostgreSQL connection string for the given credentials.
// Values are quoted so passwords may hold spaces, quotes or backslashes.
func (c *Config) DSN(user, password string) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		dsnValue(c.DB.Host), dsnValue(user), dsnValue(password), dsnValue(c.DB.Name), c.DB.Port)
	if c.DB.SSLMode != "" {
		dsn += " sslmode=" + dsnValue(c.DB.SSLMode)
	}
	return dsn
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func dsnValue(s string) string {
	return "'" + dsnEscaper.Replace(s) + "'"
}

// ParseLogLevel maps a level name to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid value %q, expected debug, info, warn or error", s)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
