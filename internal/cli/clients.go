package cli

import (
	"context"
	"fmt"

	"github.com/Hedi-Slm/epic-events/internal/client"
	"github.com/Hedi-Slm/epic-events/internal/policy"
)

func (a *App) clientMenu(ctx context.Context, s *session) error {
	for {
		items := []item{{"1", "List clients"}}
		if policy.Offers(s.actor.Role, policy.Create, policy.Client) {
			items = append(items, item{"2", "Create a client"})
		}
		if policy.Offers(s.actor.Role, policy.Update, policy.Client) {
			items = append(items, item{"3", "Update a client"})
		}
		items = append(items, item{"0", "Back"})

		choice, err := a.choose("CLIENTS", items)
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			return nil
		case "1":
			err = a.run(ctx, s, a.listClients)
		case "2":
			err = a.run(ctx, s, a.createClient)
		case "3":
			err = a.run(ctx, s, a.updateClient)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) listClients(ctx context.Context, s *session) error {
	list, err := a.svc.Clients.List(ctx, s.actor)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No clients found.")
		return nil
	}
	a.printClients(list)
	return nil
}

func (a *App) createClient(ctx context.Context, s *session) error {
	a.title("NEW CLIENT")
	var (
		req client.CreateClientRequest
		err error
	)
	if req.FullName, err = a.prompt.AskRequired("full_name", "Full name"); err != nil {
		return err
	}
	if req.Email, err = a.prompt.AskRequired("email", "Email"); err != nil {
		return err
	}
	if req.Phone, err = a.prompt.Ask("Phone (optional)"); err != nil {
		return err
	}
	if req.CompanyName, err = a.prompt.Ask("Company (optional)"); err != nil {
		return err
	}

	c, err := a.svc.Clients.Create(ctx, s.actor, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Client '%s' created (ID: %d)", c.FullName, c.ID))
	return nil
}

func (a *App) updateClient(ctx context.Context, s *session) error {
	list, err := a.svc.Clients.List(ctx, s.actor)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No clients available.")
		return nil
	}
	a.printClients(list)

	id, err := a.prompt.AskID("Client ID")
	if err != nil {
		return err
	}
	c, err := a.svc.Clients.Get(ctx, s.actor, id)
	if err != nil {
		return err
	}
	// fail before prompting; the service checks again
	if err := policy.Authorize(s.actor, policy.Update, policy.Client, policy.Target{OwnerID: c.CommercialID}); err != nil {
		return err
	}

	a.title("UPDATE CLIENT: " + c.FullName)
	var req client.UpdateClientRequest
	fields := []struct {
		dst   **string
		label string
		def   string
	}{
		{&req.FullName, "Full name", c.FullName},
		{&req.Email, "Email", c.Email},
		{&req.Phone, "Phone", c.Phone},
		{&req.CompanyName, "Company", c.CompanyName},
	}
	for _, f := range fields {
		v, err := a.prompt.AskDefault(f.label, f.def)
		if err != nil {
			return err
		}
		*f.dst = &v
	}

	updated, err := a.svc.Clients.Update(ctx, s.actor, id, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Client '%s' updated", updated.FullName))
	return nil
}
