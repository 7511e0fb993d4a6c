package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Menu entries, in display order
const (
	EntryServers  = "List servers"
	EntryPath     = "Show config path"
	EntryValidate = "Validate config"
	EntryTail     = "Tail logs"
	EntryFollow   = "Follow log"
	EntryGrep     = "Grep logs"
	EntryCLIList  = "Run CLI list"
	EntryFixPaths = "Fix home paths"
	EntryQuit     = "Quit"
)

// Entries is the console menu
var Entries = []string{
	EntryServers, EntryPath, EntryValidate, EntryTail, EntryFollow,
	EntryGrep, EntryCLIList, EntryFixPaths, EntryQuit,
}

// Selector drives the interactive parts of the console
type Selector interface {
	Select(title string, options []string) (string, error)
	Input(prompt string) (string, error)
}

// PtermSelector uses pterm's interactive select and text input
type PtermSelector struct{}

func (PtermSelector) Select(title string, options []string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New(errors.ErrPrompt, "the console needs an interactive terminal")
	}
	return pterm.DefaultInteractiveSelect.WithOptions(options).WithDefaultText(title).Show()
}

func (PtermSelector) Input(prompt string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(prompt).Show()
}

// Console is the menu-driven MCP debugging front end
type Console struct {
	ConfigPath string
	Key        string
	Home       string
	Logs       *Logs
	CLI        *CLI
	Selector   Selector
	Out        io.Writer
	TailLines  int
	// NewSession opens the backup session used by fix home paths
	NewSession func() *backup.Session
	// FollowContext derives the context a follow runs under; it defaults
	// to one cancelled by an interrupt so Ctrl-C returns to the menu.
	FollowContext func(context.Context) (context.Context, context.CancelFunc)
}

// Run shows the menu until Quit is chosen or ctx is done. A failing entry
// is reported and the menu is shown again.
func (c *Console) Run(ctx context.Context) error {
	logger := logging.GetLogger("mcp.console")
	for {
		if ctx.Err() != nil {
			return nil
		}
		choice, err := c.Selector.Select("MCP console", Entries)
		if err != nil {
			return errors.Wrap(err, errors.ErrPrompt, "menu selection failed")
		}
		if choice == EntryQuit {
			return nil
		}
		logger.Debug().Str("entry", choice).Msg("Console entry selected")
		if err := c.Do(ctx, choice); err != nil {
			logger.Debug().Err(err).Str("entry", choice).Msg("Console entry failed")
			fmt.Fprintf(c.Out, "error: %v\n", err)
		}
	}
}

// Do runs a single menu entry
func (c *Console) Do(ctx context.Context, entry string) error {
	switch entry {
	case EntryServers:
		return c.servers()
	case EntryPath:
		fmt.Fprintln(c.Out, c.ConfigPath)
		return nil
	case EntryValidate:
		return c.validate()
	case EntryTail:
		return c.tail()
	case EntryFollow:
		return c.follow(ctx)
	case EntryGrep:
		return c.grep()
	case EntryCLIList:
		out, err := c.CLI.List(ctx)
		if c.CLI.Stream == nil {
			fmt.Fprint(c.Out, out)
		}
		return err
	case EntryFixPaths:
		return c.fixPaths()
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown entry %q", entry)
	}
}

func (c *Console) servers() error {
	doc, err := Load(c.ConfigPath, c.Key)
	if err != nil {
		return err
	}
	servers := doc.Servers()
	if len(servers) == 0 {
		fmt.Fprintln(c.Out, "no servers configured")
		return nil
	}
	for _, s := range servers {
		fmt.Fprintf(c.Out, "%s: %s\n", s.Name, strings.TrimSpace(s.Command+" "+strings.Join(s.Args, " ")))
	}
	return nil
}

func (c *Console) validate() error {
	doc, err := Load(c.ConfigPath, c.Key)
	if err != nil {
		return err
	}
	problems := doc.Problems()
	if len(problems) == 0 {
		fmt.Fprintf(c.Out, "%s is valid (%d servers)\n", c.ConfigPath, len(doc.Servers()))
		return nil
	}
	for _, p := range problems {
		fmt.Fprintf(c.Out, "problem: %s\n", p)
	}
	return errors.Newf(errors.ErrMCPConfig, "%d problems in %s", len(problems), c.ConfigPath)
}

func (c *Console) pickLog() (string, error) {
	files, err := c.Logs.List()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.Newf(errors.ErrMCPLogs, "no logs in %s", c.Logs.Dir)
	}
	if len(files) == 1 {
		return files[0].Path, nil
	}
	options := make([]string, len(files))
	for i, f := range files {
		options[i] = f.Path
	}
	return c.Selector.Select("Log file", options)
}

func (c *Console) tail() error {
	path, err := c.pickLog()
	if err != nil {
		return err
	}
	n := c.TailLines
	if n <= 0 {
		n = 50
	}
	lines, err := Tail(path, n)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(c.Out, line)
	}
	return nil
}

func (c *Console) follow(ctx context.Context) error {
	path, err := c.pickLog()
	if err != nil {
		return err
	}
	derive := c.FollowContext
	if derive == nil {
		derive = func(parent context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(parent, os.Interrupt)
		}
	}
	followCtx, cancel := derive(ctx)
	defer cancel()
	fmt.Fprintf(c.Out, "following %s (Ctrl-C to stop)\n", path)
	return Follow(followCtx, path, c.Out)
}

func (c *Console) grep() error {
	pattern, err := c.Selector.Input("Pattern")
	if err != nil {
		return errors.Wrap(err, errors.ErrPrompt, "no pattern given")
	}
	if pattern == "" {
		return errors.New(errors.ErrInvalidInput, "empty pattern")
	}
	files, err := c.Logs.List()
	if err != nil {
		return err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	matches, err := Grep(paths, pattern, true)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintf(c.Out, "%s:%d:%s\n", m.File, m.Line, m.Text)
	}
	fmt.Fprintf(c.Out, "%d matches\n", len(matches))
	return nil
}

func (c *Console) fixPaths() error {
	var session *backup.Session
	if c.NewSession != nil {
		session = c.NewSession()
	}
	n, err := FixPaths(c.ConfigPath, c.Key, nil, c.Home, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "rewrote %d paths in %s\n", n, c.ConfigPath)
	if session != nil && session.Created() {
		fmt.Fprintf(c.Out, "backup in %s\n", session.Dir())
	}
	return nil
}
