package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/Hedi-Slm/epic-events/internal/apperr"
)

// DateLayout is the date format shown in prompts and tables.
const DateLayout = "02/01/2006 15:04"

// errCancelled aborts the current action and returns to its menu.
var errCancelled = errors.New("cancelled")

// Prompter reads typed answers line by line. Passwords are read without
// echo when the input is a terminal.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
	loc    *time.Location
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, loc: time.Local}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.secret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// AskDefault returns def when the answer is empty.
func (p *Prompter) AskDefault(label, def string) (string, error) {
	if def == "" {
		return p.Ask(label)
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	s, err := p.readLine()
	if err != nil || s == "" {
		return def, err
	}
	return s, nil
}

// AskRequired rejects an empty answer.
func (p *Prompter) AskRequired(field, label string) (string, error) {
	s, err := p.Ask(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", apperr.Invalid(field, "is required")
	}
	return s, nil
}

func (p *Prompter) AskInt(field, label string, def int) (int, error) {
	s, err := p.AskDefault(label, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Invalid(field, "%q is not a whole number", s)
	}
	return n, nil
}

// AskDecimal reads a currency amount. A nil def makes the answer required.
func (p *Prompter) AskDecimal(field, label string, def *decimal.Decimal) (decimal.Decimal, error) {
	var (
		s   string
		err error
	)
	if def != nil {
		s, err = p.AskDefault(label, def.StringFixed(2))
	} else {
		s, err = p.AskRequired(field, label)
	}
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, apperr.Invalid(field, "%q is not an amount", s)
	}
	return d.Round(2), nil
}

// AskTime reads a date and time, DateLayout first, then any format
// dateparse understands, reading numeric dates day first. A nil def makes
// the answer required.
func (p *Prompter) AskTime(field, label string, def *time.Time) (time.Time, error) {
	var (
		s   string
		err error
	)
	label += " (DD/MM/YYYY HH:MM)"
	if def != nil {
		s, err = p.AskDefault(label, def.In(p.loc).Format(DateLayout))
	} else {
		s, err = p.AskRequired(field, label)
	}
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.ParseInLocation(DateLayout, s, p.loc); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, p.loc, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, apperr.Invalid(field, "%q is not a date, expected DD/MM/YYYY HH:MM", s)
	}
	return t, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
	s, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "y", "yes", "o", "oui":
		return true, nil
	}
	return false, nil
}

// AskPassword reads a secret, without echo on a terminal.
func (p *Prompter) AskPassword(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.secret != nil {
		return p.secret()
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AskID reads a record id. Blank or 0 cancels the action.
func (p *Prompter) AskID(label string) (uint, error) {
	s, err := p.Ask(label + " (0 to cancel)")
	if err != nil {
		return 0, err
	}
	if s == "" || s == "0" {
		return 0, errCancelled
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("id", "%q is not a valid id", s)
	}
	return uint(id), nil
}
