package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hedi-Slm/epic-events/internal/models"
)

const rule = "=================================================="

func (a *App) title(text string) {
	fmt.Fprintf(a.out, "\n%s\n%s\n%s\n", rule, text, rule)
}

func (a *App) success(format string, args ...any) {
	fmt.Fprintf(a.out, "\nSUCCESS: %s\n\n", fmt.Sprintf(format, args...))
}

func (a *App) fail(format string, args ...any) {
	fmt.Fprintf(a.out, "\nERROR: %s\n\n", fmt.Sprintf(format, args...))
}

func (a *App) info(format string, args ...any) {
	fmt.Fprintf(a.out, "\nINFO: %s\n\n", fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintf(a.out, "\nWARNING: %s\n\n", fmt.Sprintf(format, args...))
}

// table writes tab separated rows aligned in columns.
func table(out io.Writer, header []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	w.Flush()
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateLayout)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func accountName(u *models.User) string {
	if u == nil {
		return "-"
	}
	return u.Name
}

func clientName(c *models.Client) string {
	if c == nil {
		return "-"
	}
	return c.FullName
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) printAccounts(list []models.User) {
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		rows = append(rows, []string{fmt.Sprint(u.ID), u.Name, u.Email, u.Role.Label()})
	}
	table(a.out, []string{"ID", "NAME", "EMAIL", "ROLE"}, rows)
}

func (a *App) printClients(list []models.Client) {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			fmt.Sprint(c.ID), c.FullName, c.Email, orDash(c.Phone), orDash(c.CompanyName),
			day(c.DateCreated), day(c.LastContact), accountName(c.Commercial),
		})
	}
	table(a.out, []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY", "CREATED", "LAST CONTACT", "SALES"}, rows)
}

func (a *App) printContracts(list []models.Contract) {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			fmt.Sprint(c.ID), clientName(c.Client), accountName(c.Commercial),
			money(c.TotalAmount), money(c.AmountDue), yesNo(c.IsSigned), day(c.DateCreated),
		})
	}
	table(a.out, []string{"ID", "CLIENT", "SALES", "TOTAL", "DUE", "SIGNED", "CREATED"}, rows)
}

func (a *App) printEvents(list []models.Event) {
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			fmt.Sprint(e.ID), e.Name, fmt.Sprint(e.ContractID), clientName(e.Client),
			stamp(e.DateStart), stamp(e.DateEnd), orDash(e.Location), fmt.Sprint(e.Attendees),
			accountName(e.Support),
		})
	}
	table(a.out, []string{"ID", "NAME", "CONTRACT", "CLIENT", "START", "END", "LOCATION", "ATTENDEES", "SUPPORT"}, rows)
}
