// Command epicevents is the Epic Events CRM: an interactive terminal client
// over PostgreSQL, plus schema and bootstrap commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Hedi-Slm/epic-events/internal/auth"
	"github.com/Hedi-Slm/epic-events/internal/cli"
	"github.com/Hedi-Slm/epic-events/internal/client"
	"github.com/Hedi-Slm/epic-events/internal/config"
	"github.com/Hedi-Slm/epic-events/internal/contract"
	"github.com/Hedi-Slm/epic-events/internal/event"
	"github.com/Hedi-Slm/epic-events/internal/store"
	"github.com/Hedi-Slm/epic-events/internal/telemetry"
	"github.com/Hedi-Slm/epic-events/internal/user"
	"github.com/Hedi-Slm/epic-events/internal/utils"
	"github.com/Hedi-Slm/epic-events/internal/utils/db"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "epicevents",
		Short:         "Epic Events CRM",
		Long:          "Epic Events CRM manages clients, contracts and events.\nRun without a subcommand to start an interactive session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), flags)
		},
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML, default "+config.DefaultConfigFile+" if present)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(migrateCmd(&flags), createUserCmd(&flags), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "epicevents version %s\n", config.Version)
		},
	})
	return cmd
}

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}
			database, err := db.GetDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close(database)

			if err := db.Migrate(database); err != nil {
				return err
			}
			log.Info("schema migrated")
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}
}

func createUserCmd(flags *globalFlags) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create the first management account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(flags)
			if err != nil {
				return err
			}
			database, err := db.GetDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close(database)

			prompt := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if name == "" {
				if name, err = prompt.AskRequired("name", "Name"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompt.AskRequired("email", "Email"); err != nil {
					return err
				}
			}
			password, err := prompt.AskPassword("Password")
			if err != nil {
				return err
			}
			confirm, err := prompt.AskPassword("Confirm password")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			svc := newServices(store.NewRunner(database), log)
			u, err := svc.Users.Bootstrap(cmd.Context(), user.CreateUserRequest{Name: name, Email: email, Password: password})
			if err != nil {
				return err
			}
			log.Info("management account created", "user_id", u.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Management account '%s' created (ID: %d).\n", u.Name, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Account name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func runSession(ctx context.Context, flags globalFlags) error {
	cfg, log, err := setup(&flags)
	if err != nil {
		return err
	}
	sessionID := uuid.NewString()
	log = log.With("session_id", sessionID)

	reporter := telemetry.New(log, cfg.Telemetry, sessionID)
	defer reporter.Flush(context.Background())

	database, err := connect(ctx, cfg, log, reporter)
	if err != nil {
		return err
	}
	defer db.Close(database)

	app := cli.New(newServices(store.NewRunner(database), log), os.Stdin, os.Stdout, reporter, log)
	log.Info("session started", "version", config.Version)
	if err := app.Run(ctx); err != nil {
		reporter.ReportException(err)
		return err
	}
	log.Info("session ended")
	return nil
}

var openDB = db.GetDB

// connect opens the database, reporting a failure before returning it.
func connect(ctx context.Context, cfg *config.Config, log *slog.Logger, reporter cli.Reporter) (*gorm.DB, error) {
	database, err := openDB(ctx, cfg, log)
	if err != nil {
		reporter.ReportException(err)
		return nil, err
	}
	return database, nil
}

// setup loads the configuration and builds the logger.
func setup(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	utils.HashCost = cfg.Security.BcryptCost
	return cfg, log, nil
}

func newServices(runner store.Runner, log *slog.Logger) cli.Services {
	users := user.NewRepository()
	clients := client.NewRepository()
	contracts := contract.NewRepository()
	events := event.NewRepository()

	return cli.Services{
		Auth:      auth.NewVerifier(runner, users, log),
		Users:     user.NewService(runner, users, clients, contracts, events),
		Clients:   client.NewService(runner, clients),
		Contracts: contract.NewService(runner, contracts, clients, users),
		Events:    event.NewService(runner, events, contracts, users),
	}
}

