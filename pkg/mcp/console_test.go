package mcp

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSelector answers menu selections and inputs from queues
type scriptedSelector struct {
	choices []string
	inputs  []string
	titles  []string
}

func (s *scriptedSelector) Select(title string, options []string) (string, error) {
	s.titles = append(s.titles, title)
	if len(s.choices) == 0 {
		return "", fmt.Errorf("no more choices")
	}
	c := s.choices[0]
	s.choices = s.choices[1:]
	return c, nil
}

func (s *scriptedSelector) Input(string) (string, error) {
	if len(s.inputs) == 0 {
		return "", fmt.Errorf("no more input")
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

func newConsole(t *testing.T, sel *scriptedSelector) (*Console, *bytes.Buffer, *testutil.FakeRunner) {
	t.Helper()
	home := t.TempDir()
	cfg := testutil.CreateFile(t, home, ".config/Claude/claude_desktop_config.json", sampleConfig)
	logDir := filepath.Join(home, ".config", "Claude", "logs")
	testutil.CreateFile(t, logDir, "mcp.log", "a\nb: error\nc\n")

	r := testutil.NewFakeRunner("claude").Respond("claude mcp list", "notes: connected\n", 0)
	out := &bytes.Buffer{}
	return &Console{
		ConfigPath: cfg,
		Home:       home,
		Logs:       &Logs{Dir: logDir},
		CLI:        &CLI{Runner: r, Command: []string{"claude", "mcp"}},
		Selector:   sel,
		Out:        out,
		TailLines:  2,
		NewSession: func() *backup.Session {
			return backup.NewSession(filesystem.NewOS(), filepath.Join(home, "bk"), home, time.Now())
		},
	}, out, r
}

func TestConsoleEntries(t *testing.T) {
	sel := &scriptedSelector{
		choices: []string{EntryServers, EntryPath, EntryValidate, EntryTail, EntryGrep, EntryCLIList, EntryQuit},
		inputs:  []string{"ERROR"},
	}
	c, out, r := newConsole(t, sel)

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "fetch: uvx mcp-server-fetch")
	assert.Contains(t, text, "notes: /Users/alice/.local/bin/notes-mcp --root /Users/alice/notes")
	assert.Contains(t, text, c.ConfigPath+"\n")
	assert.Contains(t, text, "is valid (2 servers)")
	assert.Contains(t, text, "b: error\nc\n")
	assert.Contains(t, text, "mcp.log:2:b: error")
	assert.Contains(t, text, "1 matches")
	assert.Contains(t, text, "notes: connected")
	assert.Equal(t, []string{"claude mcp list"}, r.CommandLines())
}

func TestConsoleFailingEntryContinues(t *testing.T) {
	sel := &scriptedSelector{choices: []string{EntryGrep, EntryPath, EntryQuit}, inputs: []string{""}}
	c, out, _ := newConsole(t, sel)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "error: [INVALID_INPUT] empty pattern")
	assert.Contains(t, out.String(), c.ConfigPath)
}

func TestConsoleFixPaths(t *testing.T) {
	sel := &scriptedSelector{choices: []string{EntryFixPaths, EntryQuit}}
	c, out, _ := newConsole(t, sel)

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "rewrote 3 paths")
	assert.Contains(t, out.String(), "backup in ")
	assert.Contains(t, testutil.ReadFile(t, c.ConfigPath), c.Home+"/notes")
}

func TestConsoleFollowStopsWithContext(t *testing.T) {
	sel := &scriptedSelector{choices: []string{EntryFollow, EntryQuit}}
	c, out, _ := newConsole(t, sel)
	c.FollowContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(parent, 50*time.Millisecond)
	}

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "following ")
}

func TestConsoleSelectionErrorEnds(t *testing.T) {
	c, _, _ := newConsole(t, &scriptedSelector{})
	assert.Error(t, c.Run(context.Background()))
}

func TestConsoleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sel := &scriptedSelector{choices: []string{EntryPath}}
	c, out, _ := newConsole(t, sel)

	require.NoError(t, c.Run(ctx))
	assert.Empty(t, out.String())
	assert.Empty(t, sel.titles)
}
