package remote

import (
	"context"
	"io"
	"strconv"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Transport moves the dotfiles tree to a host and runs commands there
type Transport interface {
	Name() string
	Transfer(ctx context.Context, host types.Host, localDir, remoteDir string) error
	Exec(ctx context.Context, host types.Host, command string) (string, error)
}

// RsyncTransport shells out to rsync and ssh, so host aliases and keys
// come from the user's ssh configuration.
type RsyncTransport struct {
	Runner   runner.Runner
	Excludes []string
	Delete   bool
	Stream   io.Writer
}

func (t *RsyncTransport) Name() string { return "rsync" }

// RsyncArgs builds the rsync argument list for a host
func (t *RsyncTransport) RsyncArgs(host types.Host, localDir, remoteDir string) []string {
	args := []string{"-az"}
	if t.Delete {
		args = append(args, "--delete")
	}
	for _, ex := range ensureVCSExcluded(t.Excludes) {
		args = append(args, "--exclude", ex)
	}
	if host.Port != 0 {
		args = append(args, "-e", "ssh -p "+strconv.Itoa(host.Port))
	}
	return append(args, trailingSlash(localDir), destination(host)+":"+trailingSlash(remoteDir))
}

// SSHArgs builds the ssh argument list for running command on host
func (t *RsyncTransport) SSHArgs(host types.Host, command string) []string {
	var args []string
	if host.Port != 0 {
		args = append(args, "-p", strconv.Itoa(host.Port))
	}
	return append(args, destination(host), command)
}

func (t *RsyncTransport) Transfer(ctx context.Context, host types.Host, localDir, remoteDir string) error {
	res, err := t.Runner.Run(ctx, runner.Cmd{
		Name:   "rsync",
		Args:   t.RsyncArgs(host, localDir, remoteDir),
		Stream: t.Stream,
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrRemoteTransfer, "rsync to %s failed", host.Name).
			WithDetail("output", res.Output)
	}
	return nil
}

func (t *RsyncTransport) Exec(ctx context.Context, host types.Host, command string) (string, error) {
	res, err := t.Runner.Run(ctx, runner.Cmd{
		Name:   "ssh",
		Args:   t.SSHArgs(host, command),
		Stream: t.Stream,
	})
	if err != nil {
		return res.Output, errors.Wrapf(err, errors.ErrRemoteExec, "remote command on %s failed", host.Name)
	}
	return res.Output, nil
}

func destination(host types.Host) string {
	if host.User != "" {
		return host.User + "@" + host.Address()
	}
	return host.Address()
}

func trailingSlash(dir string) string {
	if dir == "" || dir[len(dir)-1] == '/' {
		return dir
	}
	return dir + "/"
}

func ensureVCSExcluded(excludes []string) []string {
	for _, ex := range excludes {
		if ex == ".git" || ex == ".git/" {
			return excludes
		}
	}
	return append([]string{".git"}, excludes...)
}
