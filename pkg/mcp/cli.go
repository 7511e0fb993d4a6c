package mcp

import (
	"context"
	"io"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/runner"
)

// CLI wraps the assistant's configuration command line, e.g. "claude mcp"
type CLI struct {
	Runner  runner.Runner
	Command []string
	Stream  io.Writer
}

// Available reports whether the CLI binary is on PATH
func (c *CLI) Available() bool {
	if len(c.Command) == 0 {
		return false
	}
	_, err := c.Runner.LookPath(c.Command[0])
	return err == nil
}

// Run invokes the CLI with extra arguments and returns its output
func (c *CLI) Run(ctx context.Context, args ...string) (string, error) {
	if len(c.Command) == 0 {
		return "", errors.New(errors.ErrConfigValid, "mcp.cli is empty")
	}
	if !c.Available() {
		return "", errors.Newf(errors.ErrNotFound, "%s not found on PATH", c.Command[0])
	}
	cmd := runner.Cmd{
		Name:   c.Command[0],
		Args:   append(append([]string{}, c.Command[1:]...), args...),
		Stream: c.Stream,
	}
	res, err := c.Runner.Run(ctx, cmd)
	return res.Output, err
}

// List runs "<cli> list"
func (c *CLI) List(ctx context.Context) (string, error) {
	return c.Run(ctx, "list")
}

// Get runs "<cli> get <name>"
func (c *CLI) Get(ctx context.Context, name string) (string, error) {
	return c.Run(ctx, "get", name)
}
