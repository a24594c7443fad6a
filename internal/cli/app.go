// Package cli drives the interactive session: login, the role filtered main
// menu and one sub-menu per entity. Every action goes through a service,
// which enforces the authorization policy before touching the store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/auth"
	"github.com/Hedi-Slm/epic-events/internal/client"
	"github.com/Hedi-Slm/epic-events/internal/contract"
	"github.com/Hedi-Slm/epic-events/internal/event"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/user"
)

// Reporter is the telemetry sink.
type Reporter interface {
	ReportException(err error)
	ReportMessage(text string, level slog.Level)
}

type Services struct {
	Auth      *auth.Verifier
	Users     *user.Service
	Clients   *client.Service
	Contracts *contract.Service
	Events    *event.Service
}

type App struct {
	svc      Services
	prompt   *Prompter
	out      io.Writer
	reporter Reporter
	log      *slog.Logger
	Now      func() time.Time
}

func New(svc Services, in io.Reader, out io.Writer, reporter Reporter, log *slog.Logger) *App {
	return &App{
		svc:      svc,
		prompt:   NewPrompter(in, out),
		out:      out,
		reporter: reporter,
		log:      log,
		Now:      time.Now,
	}
}

// session is the state of one logged-in account.
type session struct {
	user  *models.User
	actor policy.Actor
}

type item struct {
	key   string
	label string
}

// Run loops between the login screen and the main menu until the user
// exits or the input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		u, err := a.login(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if u == nil {
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		}

		err = a.mainMenu(ctx, &session{user: u, actor: policy.ActorOf(u)})
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		a.success("Goodbye %s!", u.Name)
	}
}

// login returns nil, nil when the user chooses to exit.
func (a *App) login(ctx context.Context) (*models.User, error) {
	for {
		choice, err := a.choose("EPIC EVENTS CRM", []item{{"1", "Log in"}, {"2", "Exit"}})
		if err != nil {
			return nil, err
		}
		switch choice {
		case "2":
			return nil, nil
		case "1":
		default:
			continue
		}

		email, err := a.prompt.Ask("Email")
		if err != nil {
			return nil, err
		}
		password, err := a.prompt.AskPassword("Password")
		if err != nil {
			return nil, err
		}
		if email == "" || password == "" {
			a.fail("Email and password are required.")
			continue
		}

		u, err := a.svc.Auth.Authenticate(ctx, auth.LoginRequest{Email: email, Password: password})
		if errors.Is(err, apperr.ErrAuthentication) {
			a.fail("Invalid email or password.")
			continue
		}
		if err != nil {
			a.handle(err)
			continue
		}
		a.success("Logged in. Welcome %s", u.Name)
		return u, nil
	}
}

func (a *App) mainMenu(ctx context.Context, s *session) error {
	for {
		items := []item{
			{"1", "Clients"},
			{"2", "Contracts"},
			{"3", "Events"},
		}
		if policy.Offers(s.actor.Role, policy.Read, policy.Account) {
			items = append(items, item{"4", "Accounts"})
		}
		items = append(items, item{"0", "Log out"})

		title := fmt.Sprintf("EPIC EVENTS CRM - %s (%s)", s.user.Name, s.actor.Role.Label())
		choice, err := a.choose(title, items)
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = a.clientMenu(ctx, s)
		case "2":
			err = a.contractMenu(ctx, s)
		case "3":
			err = a.eventMenu(ctx, s)
		case "4":
			err = a.accountMenu(ctx, s)
		case "0":
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// choose shows a menu and returns the selected key, or "" after telling
// the user the choice was invalid.
func (a *App) choose(title string, items []item) (string, error) {
	a.title(title)
	for _, it := range items {
		fmt.Fprintf(a.out, "%s. %s\n", it.key, it.label)
	}
	choice, err := a.prompt.Ask("\nYour choice")
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if it.key == choice {
			return choice, nil
		}
	}
	a.fail("Invalid choice.")
	return "", nil
}

// run executes one menu action. Only an input failure escapes; every other
// error is shown and the menu goes on.
func (a *App) run(ctx context.Context, s *session, action func(context.Context, *session) error) error {
	err := action(ctx, s)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return err
	}
	a.handle(err)
	return nil
}

func (a *App) handle(err error) {
	var assoc *apperr.AssociationError
	switch {
	case errors.Is(err, errCancelled):
		a.info("Cancelled.")
	case errors.As(err, &assoc):
		a.fail("This account is still referenced:\n  clients_count: %d\n  contracts_count: %d\n  events_count: %d\nReassign them first.",
			assoc.ClientsCount, assoc.ContractsCount, assoc.EventsCount)
	case apperr.Expected(err):
		a.fail("%s", err)
	default:
		a.log.Error("action failed", "error", err)
		a.reporter.ReportException(err)
		a.fail("An unexpected error occurred. It has been reported.")
	}
}

// done reports a successful mutation to the user and to telemetry.
func (a *App) done(what string) {
	a.success("%s", what)
	a.reporter.ReportMessage(what, slog.LevelInfo)
}
