package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/runner"
)

// FakeRunner records commands and answers them from canned responses
type FakeRunner struct {
	mu sync.Mutex
	// Paths maps executable names to the path LookPath returns
	Paths map[string]string
	// Responses maps a command prefix ("brew install") to its outcome
	Responses map[string]FakeResponse
	Calls     []runner.Cmd
}

// FakeResponse is a canned command outcome
type FakeResponse struct {
	Output   string
	ExitCode int
}

// NewFakeRunner returns a runner where the given binaries exist
func NewFakeRunner(binaries ...string) *FakeRunner {
	f := &FakeRunner{Paths: map[string]string{}, Responses: map[string]FakeResponse{}}
	for _, b := range binaries {
		f.Paths[b] = "/usr/bin/" + b
	}
	return f
}

// Respond registers an outcome for commands starting with prefix
func (f *FakeRunner) Respond(prefix string, output string, exitCode int) *FakeRunner {
	f.Responses[prefix] = FakeResponse{Output: output, ExitCode: exitCode}
	return f
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (f *FakeRunner) Run(_ context.Context, c runner.Cmd) (runner.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)

	line := c.String()
	best := ""
	for prefix := range f.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	resp := f.Responses[best]
	if c.Stream != nil && resp.Output != "" {
		_, _ = fmt.Fprint(c.Stream, resp.Output)
	}
	res := runner.Result{Output: resp.Output, ExitCode: resp.ExitCode}
	if resp.ExitCode != 0 {
		return res, errors.Newf(errors.ErrCommandFailed, "%s failed", c.Name).
			WithDetail("exit_code", resp.ExitCode)
	}
	return res, nil
}

// CommandLines returns every recorded command as a string
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.String())
	}
	return out
}
