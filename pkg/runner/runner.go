// Package runner executes external programs. Every shell-out in dotsync
// (rsync, ssh, package managers, the MCP CLI) goes through a Runner.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// DefaultTimeout bounds a command when no timeout is configured
const DefaultTimeout = 5 * time.Minute

// Cmd describes one invocation
type Cmd struct {
	Name  string
	Args  []string
	Dir   string
	Stdin io.Reader
	// Stream receives combined output as it is produced, in addition to capture
	Stream io.Writer
}

// String renders the command line for logs and dry runs
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the captured outcome of a command
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Runner runs commands and resolves executables
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
	LookPath(name string) (string, error)
}

// Exec runs commands with os/exec
type Exec struct {
	Timeout time.Duration
}

// New returns an Exec runner. A zero timeout means DefaultTimeout.
func New(timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exec{Timeout: timeout}
}

func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (e *Exec) Run(ctx context.Context, c Cmd) (Result, error) {
	logging.LogCommand(c.Name, c.Args)

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if c.Stream != nil {
		out = io.MultiWriter(&buf, c.Stream)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err := cmd.Run()
	res := Result{Output: buf.String(), Duration: time.Since(start)}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		if ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		return res, errors.Wrapf(err, errors.ErrCommandFailed, "%s failed", c.Name).
			WithDetail("command", c.String()).
			WithDetail("exit_code", res.ExitCode)
	}
	return res, nil
}
