package remote

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// HostRunner runs commands on one host through a Transport so code
// written against runner.Runner, like the installer, can act remotely.
type HostRunner struct {
	Transport Transport
	Host      types.Host
}

// NewHostRunner returns a runner for host
func NewHostRunner(t Transport, host types.Host) *HostRunner {
	return &HostRunner{Transport: t, Host: host}
}

func (r *HostRunner) Run(ctx context.Context, c runner.Cmd) (runner.Result, error) {
	line := CommandLine(c.Name, c.Args...)
	if c.Dir != "" {
		line = "cd " + RemotePath(c.Dir) + " && " + line
	}
	logger := logging.GetLogger("remote.runner")
	logger.Debug().Str("host", r.Host.Name).Str("command", line).Msg("Running on host")

	start := time.Now()
	out, err := r.Transport.Exec(ctx, r.Host, line)
	res := runner.Result{Output: out, Duration: time.Since(start)}
	if err != nil {
		res.ExitCode = exitCode(err)
		return res, errors.Wrapf(err, errors.ErrCommandFailed, "%s failed on %s", c.Name, r.Host.Name).
			WithDetail("output", out)
	}
	return res, nil
}

// LookPath asks the remote shell where name is
func (r *HostRunner) LookPath(name string) (string, error) {
	out, err := r.Transport.Exec(context.Background(), r.Host, "command -v "+shellQuote(name))
	path := strings.TrimSpace(out)
	if err != nil || path == "" {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return path, nil
}

// exitCode digs the remote exit status out of an ssh or os/exec error
func exitCode(err error) int {
	var sshExit interface{ ExitStatus() int }
	if stderrors.As(err, &sshExit) {
		return sshExit.ExitStatus()
	}
	var execExit interface{ ExitCode() int }
	if stderrors.As(err, &execExit) {
		return execExit.ExitCode()
	}
	return -1
}

// Platform returns the host's operating system as a GOOS value and
// whether remote commands run as root
func (r *HostRunner) Platform(ctx context.Context) (goos string, root bool, err error) {
	out, err := r.Transport.Exec(ctx, r.Host, "uname -s && id -u")
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrRemoteExec, "cannot identify %s", r.Host.Name)
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return "", false, errors.Newf(errors.ErrRemoteExec, "unexpected platform output from %s", r.Host.Name).
			WithDetail("output", out)
	}
	return strings.ToLower(fields[0]), fields[1] == "0", nil
}

// CommandLine quotes name and args for a POSIX shell. Words made only of
// safe characters are left bare.
func CommandLine(name string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{name}, args...) {
		if w != "" && strings.Trim(w, safeShellChars) == "" {
			words = append(words, w)
		} else {
			words = append(words, shellQuote(w))
		}
	}
	return strings.Join(words, " ")
}

const safeShellChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=+:@%,"
