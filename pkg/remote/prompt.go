package remote

import (
	"os"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Prompter asks the user a yes/no question
type Prompter interface {
	Confirm(question string) (bool, error)
}

// TerminalPrompter asks through pterm's interactive confirm. It refuses to
// guess when stdin is not a terminal.
type TerminalPrompter struct {
	isTerminal func() bool
}

// NewTerminalPrompter returns a prompter bound to the process stdin
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{isTerminal: func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}}
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	if !p.isTerminal() {
		return false, errors.New(errors.ErrPrompt, "stdin is not a terminal, pass --yes to skip confirmation")
	}
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrPrompt, "confirmation failed")
	}
	return ok, nil
}

// AlwaysYes accepts every question
type AlwaysYes struct{}

func (AlwaysYes) Confirm(string) (bool, error) { return true, nil }
