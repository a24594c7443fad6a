package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Hedi-Slm/epic-events/internal/contract"
	"github.com/Hedi-Slm/epic-events/internal/models"
	"github.com/Hedi-Slm/epic-events/internal/policy"
)

func (a *App) contractMenu(ctx context.Context, s *session) error {
	for {
		items := []item{{"1", "List all contracts"}}
		if policy.Offers(s.actor.Role, policy.Create, policy.Contract) {
			items = append(items, item{"2", "Create a contract"})
		}
		if policy.Offers(s.actor.Role, policy.Update, policy.Contract) {
			items = append(items, item{"3", "Update a contract"})
		}
		items = append(items, item{"4", "Filter contracts"}, item{"0", "Back"})

		choice, err := a.choose("CONTRACTS", items)
		if err != nil {
			return err
		}
		switch choice {
		case "0":
			return nil
		case "1":
			err = a.run(ctx, s, a.listContracts)
		case "2":
			err = a.run(ctx, s, a.createContract)
		case "3":
			err = a.run(ctx, s, a.updateContract)
		case "4":
			err = a.run(ctx, s, a.filterContracts)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) showContracts(ctx context.Context, s *session, filter models.ContractFilter) error {
	list, err := a.svc.Contracts.List(ctx, s.actor, filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No contracts found.")
		return nil
	}
	a.printContracts(list)
	return nil
}

func (a *App) listContracts(ctx context.Context, s *session) error {
	return a.showContracts(ctx, s, models.ContractFilter{})
}

func (a *App) filterContracts(ctx context.Context, s *session) error {
	items := make([]item, 0, len(contract.StatusViews)+1)
	for i, v := range contract.StatusViews {
		items = append(items, item{fmt.Sprint(i + 1), v.Label})
	}
	items = append(items, item{"0", "Back"})

	choice, err := a.choose("FILTER CONTRACTS", items)
	if err != nil || choice == "" {
		return err
	}
	if choice == "0" {
		return errCancelled
	}
	i, _ := strconv.Atoi(choice)
	return a.showContracts(ctx, s, models.ContractFilter{Status: contract.StatusViews[i-1].Status})
}

func (a *App) createContract(ctx context.Context, s *session) error {
	clients, err := a.svc.Clients.List(ctx, s.actor)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		a.info("No clients available.")
		return nil
	}
	sales, err := a.svc.Users.ListByRole(ctx, s.actor, models.RoleSales)
	if err != nil {
		return err
	}
	if len(sales) == 0 {
		a.info("No sales account available.")
		return nil
	}

	a.title("NEW CONTRACT")
	var req contract.CreateContractRequest
	a.printClients(clients)
	if req.ClientID, err = a.prompt.AskID("Client ID"); err != nil {
		return err
	}
	a.printAccounts(sales)
	if req.CommercialID, err = a.prompt.AskID("Sales account ID"); err != nil {
		return err
	}
	if req.TotalAmount, err = a.prompt.AskDecimal("total_amount", "Total amount", nil); err != nil {
		return err
	}
	due, err := a.prompt.AskDecimal("amount_due", "Amount due", &req.TotalAmount)
	if err != nil {
		return err
	}
	req.AmountDue = &due
	signed, err := a.prompt.Confirm("Signed", false)
	if err != nil {
		return err
	}
	req.IsSigned = &signed

	c, err := a.svc.Contracts.Create(ctx, s.actor, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Contract %d created for client '%s'", c.ID, clientName(c.Client)))
	return nil
}

func (a *App) updateContract(ctx context.Context, s *session) error {
	list, err := a.svc.Contracts.List(ctx, s.actor, models.ContractFilter{})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.info("No contracts available.")
		return nil
	}
	a.printContracts(list)

	id, err := a.prompt.AskID("Contract ID")
	if err != nil {
		return err
	}
	c, err := a.svc.Contracts.Get(ctx, s.actor, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(s.actor, policy.Update, policy.Contract, policy.Target{OwnerID: c.CommercialID}); err != nil {
		return err
	}

	a.title(fmt.Sprintf("UPDATE CONTRACT %d", c.ID))
	var req contract.UpdateContractRequest
	total, err := a.prompt.AskDecimal("total_amount", "Total amount", &c.TotalAmount)
	if err != nil {
		return err
	}
	req.TotalAmount = &total
	due, err := a.prompt.AskDecimal("amount_due", "Amount due", &c.AmountDue)
	if err != nil {
		return err
	}
	req.AmountDue = &due
	signed, err := a.prompt.Confirm("Signed", c.IsSigned)
	if err != nil {
		return err
	}
	req.IsSigned = &signed

	if policy.Can(s.actor, policy.Assign, policy.Contract, policy.Target{OwnerID: c.CommercialID}) {
		reassign, err := a.prompt.Confirm("Reassign to another sales account", false)
		if err != nil {
			return err
		}
		if reassign {
			sales, err := a.svc.Users.ListByRole(ctx, s.actor, models.RoleSales)
			if err != nil {
				return err
			}
			a.printAccounts(sales)
			to, err := a.prompt.AskID("Sales account ID")
			if err != nil {
				return err
			}
			req.CommercialID = &to
		}
	}

	updated, err := a.svc.Contracts.Update(ctx, s.actor, id, req)
	if err != nil {
		return err
	}
	a.done(fmt.Sprintf("Contract %d updated", updated.ID))
	return nil
}
