package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
	"github.com/Hedi-Slm/epic-events/internal/event"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
)

func (a *App) eventMenu(ctx context.Context, s *session) error {
	for {
		items := []item{{"1", "List all events"}}
		if policy.Offers(s.actor.Role, policy.Create, policy.Event) {
			items = append(items, item{"2", "Create an event"})
		}
		if policy.Offers(s.actor.Role, policy.Update, policy.Event) {
			items = append(items, item{"3", "Update an event"})
		}
		items = append(items, item{"4", "Filter events"}, item{"0", "Back"})

		choice, err := a.choose("EVENTS", items)
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			return nil
		case "1":
			err = a.run(ctx, s, a.listEvents)
		case "2":
			err = a.run(ctx, s, a.createEvent)
		case "3":
			err = a.run(ctx, s, a.updateEvent)
		case "4":
			err = a.run(ctx, s, a.filterEvents)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) showEvents(ctx context.Context, s *session, filter models.EventFilter) error {
	list, err := a.svc.Events.List(ctx, s.actor, filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No events found.")
		return nil
	}
	a.printEvents(list)
	return nil
}

func (a *App) listEvents(ctx context.Context, s *session) error {
	return a.showEvents(ctx, s, models.EventFilter{})
}

func (a *App) filterEvents(ctx context.Context, s *session) error {
	views := event.Views(s.actor, a.Now())
	items := make([]item, 0, len(views)+1)
	for i, v := range views {
		items = append(items, item{strconv.Itoa(i + 1), v.Label})
	}
	items = append(items, item{"0", "Back"})

	choice, err := a.choose("FILTER EVENTS", items)
	if err != nil || choice == "" {
		return err
	}
	if choice == "0" {
		return errCancelled
	}
	i, _ := strconv.Atoi(choice)
	return a.showEvents(ctx, s, views[i-1].Filter)
}

func (a *App) createEvent(ctx context.Context, s *session) error {
	contracts, err := a.svc.Contracts.Signed(ctx, s.actor)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		a.info("You have no signed contract to create an event from.")
		return nil
	}

	a.title("NEW EVENT")
	a.printContracts(contracts)
	var req event.CreateEventRequest
	if req.ContractID, err = a.prompt.AskID("Signed contract ID"); err != nil {
		return err
	}
	if req.Name, err = a.prompt.AskRequired("name", "Event name"); err != nil {
		return err
	}
	if req.DateStart, err = a.prompt.AskTime("date_start", "Start", nil); err != nil {
		return err
	}
	if req.DateEnd, err = a.prompt.AskTime("date_end", "End", nil); err != nil {
		return err
	}
	if !req.DateEnd.After(req.DateStart) {
		return apperr.Invalid("date_end", "must be after the start date")
	}
	if req.Location, err = a.prompt.Ask("Location"); err != nil {
		return err
	}
	if req.Attendees, err = a.prompt.AskInt("attendees", "Attendees", 0); err != nil {
		return err
	}
	if req.Notes, err = a.prompt.Ask("Notes (optional)"); err != nil {
		return err
	}

	e, err := a.svc.Events.Create(ctx, s.actor, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Event '%s' created (ID: %d)", e.Name, e.ID))
	return nil
}

func (a *App) updateEvent(ctx context.Context, s *session) error {
	list, err := a.svc.Events.Updatable(ctx, s.actor)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No events available.")
		return nil
	}
	a.printEvents(list)

	id, err := a.prompt.AskID("Event ID")
	if err != nil {
		return err
	}
	e, err := a.svc.Events.Get(ctx, s.actor, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(s.actor, policy.Update, policy.Event, policy.Target{SupportID: e.SupportID}); err != nil {
		return err
	}

	a.title("UPDATE EVENT: " + e.Name)
	var req event.UpdateEventRequest
	name, err := a.prompt.AskDefault("Event name", e.Name)
	if err != nil {
		return err
	}
	req.Name = &name
	start, err := a.prompt.AskTime("date_start", "Start", &e.DateStart)
	if err != nil {
		return err
	}
	req.DateStart = &start
	end, err := a.prompt.AskTime("date_end", "End", &e.DateEnd)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return apperr.Invalid("date_end", "must be after the start date")
	}
	req.DateEnd = &end
	location, err := a.prompt.AskDefault("Location", e.Location)
	if err != nil {
		return err
	}
	req.Location = &location
	attendees, err := a.prompt.AskInt("attendees", "Attendees", e.Attendees)
	if err != nil {
		return err
	}
	req.Attendees = &attendees
	notes, err := a.prompt.AskDefault("Notes", e.Notes)
	if err != nil {
		return err
	}
	req.Notes = &notes

	if policy.Can(s.actor, policy.Assign, policy.Event, policy.Target{SupportID: e.SupportID}) {
		if err := a.askSupport(ctx, s, e, &req); err != nil {
			return err
		}
	}

	updated, err := a.svc.Events.Update(ctx, s.actor, id, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Event '%s' updated", updated.Name))
	return nil
}

func (a *App) askSupport(ctx context.Context, s *session, e *models.Event, req *event.UpdateEventRequest) error {
	supports, err := a.svc.Users.ListByRole(ctx, s.actor, models.RoleSupport)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nCurrent support: %s\n", accountName(e.Support))
	a.printAccounts(supports)
	answer, err := a.prompt.Ask("Support account ID (blank keeps current, '-' to unassign)")
	if err != nil {
		return err
	}
	switch answer {
	case "":
	case "-":
		req.UnassignSupport = true
	default:
		id, err := strconv.ParseUint(answer, 10, 64)
		if err != nil {
			return apperr.Invalid("support_id", "%q is not a valid id", answer)
		}
		support := uint(id)
		req.SupportID = &support
	}
	return nil
}
