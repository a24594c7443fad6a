package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
	"github.com/Hedi-Slm/epic-events/internal/user"
	"github.com/Hedi-Slm/epic-events/internal/utils"
)

func (a *App) accountMenu(ctx context.Context, s *session) error {
	if err := policy.Authorize(s.actor, policy.Read, policy.Account, policy.Target{}); err != nil {
		a.handle(err)
		return nil
	}
	for {
		choice, err := a.choose("ACCOUNTS", []item{
			{"1", "List accounts"},
			{"2", "Create an account"},
			{"3", "Update an account"},
			{"4", "Delete an account"},
			{"0", "Back"},
		})
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			return nil
		case "1":
			err = a.run(ctx, s, a.listAccounts)
		case "2":
			err = a.run(ctx, s, a.createAccount)
		case "3":
			err = a.run(ctx, s, a.updateAccount)
		case "4":
			err = a.run(ctx, s, a.deleteAccount)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) listAccounts(ctx context.Context, s *session) error {
	list, err := a.svc.Users.List(ctx, s.actor)
	if err != nil {
		return err
	}
	a.printAccounts(list)
	return nil
}

// askRole lets the user pick a role; def is preselected when not empty.
func (a *App) askRole(def models.Role) (models.Role, error) {
	fmt.Fprintln(a.out, "\nRoles:")
	for i, r := range models.Roles {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, r.Label())
	}
	var (
		answer string
		err    error
	)
	if def != "" {
		answer, err = a.prompt.AskDefault("Role", def.Label())
	} else {
		answer, err = a.prompt.AskRequired("role", "Role")
	}
	if err != nil {
		return "", err
	}
	if answer == def.Label() {
		return def, nil
	}
	i, err := strconv.Atoi(answer)
	if err != nil || i < 1 || i > len(models.Roles) {
		return "", apperr.Invalid("role", "%q is not one of the listed roles", answer)
	}
	return models.Roles[i-1], nil
}

// askNewPassword reads a password twice. An empty first answer returns ""
// so the caller can decide what blank means.
func (a *App) askNewPassword(label string) (string, error) {
	password, err := a.prompt.AskPassword(label)
	if err != nil || password == "" {
		return "", err
	}
	confirm, err := a.prompt.AskPassword("Confirm password")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", apperr.Invalid("password", "confirmation does not match")
	}
	return password, nil
}

func (a *App) createAccount(ctx context.Context, s *session) error {
	a.title("NEW ACCOUNT")
	var (
		req user.CreateUserRequest
		err error
	)
	if req.Name, err = a.prompt.AskRequired("name", "Name"); err != nil {
		return err
	}
	if req.Email, err = a.prompt.AskRequired("email", "Email"); err != nil {
		return err
	}
	if req.Password, err = a.askNewPassword("Password (blank generates one)"); err != nil {
		return err
	}
	generated := req.Password == ""
	if generated {
		if req.Password, err = utils.GenerateTemporaryPassword(); err != nil {
			return err
		}
	}
	if req.Role, err = a.askRole(""); err != nil {
		return err
	}

	u, err := a.svc.Users.Create(ctx, s.actor, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("User '%s' created (ID: %d)", u.Name, u.ID))
	if generated {
		a.info("Temporary password: %s", req.Password)
	}
	return nil
}

func (a *App) updateAccount(ctx context.Context, s *session) error {
	list, err := a.svc.Users.List(ctx, s.actor)
	if err != nil {
		return err
	}
	a.printAccounts(list)
	id, err := a.prompt.AskID("Account ID")
	if err != nil {
		return err
	}
	var current *models.User
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
		}
	}
	if current == nil {
		return fmt.Errorf("account %d: %w", id, apperr.ErrNotFound)
	}
	if id == s.actor.ID {
		a.warn("You are editing your own account. Be careful with role changes.")
	}

	a.title("UPDATE ACCOUNT: " + current.Name)
	var req user.UpdateUserRequest
	name, err := a.prompt.AskDefault("Name", current.Name)
	if err != nil {
		return err
	}
	req.Name = &name
	email, err := a.prompt.AskDefault("Email", current.Email)
	if err != nil {
		return err
	}
	req.Email = &email
	password, err := a.askNewPassword("New password (blank keeps current)")
	if err != nil {
		return err
	}
	if password != "" {
		req.Password = &password
	}
	role, err := a.askRole(current.Role)
	if err != nil {
		return err
	}
	req.Role = &role

	u, err := a.svc.Users.Update(ctx, s.actor, id, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("User '%s' updated", u.Name))
	if id == s.actor.ID && u.Role != s.actor.Role {
		a.warn("Your role changed to %s. Log out and back in for it to take effect.", u.Role.Label())
	}
	return nil
}

func (a *App) deleteAccount(ctx context.Context, s *session) error {
	list, err := a.svc.Users.List(ctx, s.actor)
	if err != nil {
		return err
	}
	a.printAccounts(list)
	id, err := a.prompt.AskID("Account ID")
	if err != nil {
		return err
	}
	if err := policy.Authorize(s.actor, policy.Delete, policy.Account, policy.Target{ID: id}); err != nil {
		return err
	}
	assoc, err := a.svc.Users.CheckAssociations(ctx, s.actor, id)
	if err != nil {
		return err
	}
	if assoc.Any() {
		return assoc
	}

	ok, err := a.prompt.Confirm(fmt.Sprintf("Delete account %d? This cannot be undone", id), false)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	u, err := a.svc.Users.Delete(ctx, s.actor, id)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("User '%s' deleted", u.Name))
	return nil
}
