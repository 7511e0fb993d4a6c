package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/remote"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	failTransfer map[string]bool
	failExec     map[string]bool
	// files answers "cat" commands, keyed by host:command
	files     map[string]string
	transfers []string
	commands  []string
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Transfer(_ context.Context, host types.Host, localDir, remoteDir string) error {
	f.transfers = append(f.transfers, host.Name+":"+localDir+"->"+remoteDir)
	if f.failTransfer[host.Name] {
		return errors.New(errors.ErrRemoteTransfer, "connection reset")
	}
	return nil
}

func (f *fakeTransport) Exec(_ context.Context, host types.Host, command string) (string, error) {
	f.commands = append(f.commands, host.Name+":"+command)
	if strings.HasPrefix(command, "cat ") {
		if content, ok := f.files[host.Name+":"+command]; ok {
			return content, nil
		}
		return "cat: No such file or directory", errors.New(errors.ErrRemoteExec, "exit 1")
	}
	if f.failExec[host.Name] {
		return "permission denied", errors.New(errors.ErrRemoteExec, "exit 1")
	}
	return "ok", nil
}

type scriptedPrompter struct {
	answers map[string]bool
	asked   []string
}

func (s *scriptedPrompter) Confirm(q string) (bool, error) {
	s.asked = append(s.asked, q)
	for name, ok := range s.answers {
		if strings.Contains(q, name) {
			return ok, nil
		}
	}
	return false, nil
}

var hosts = []types.Host{
	{Name: "oracle", Alias: "oracle", User: "ubuntu"},
	{Name: "evertz", Alias: "evertz", User: "ppyzel", DotfilesDir: "~/src/dotfiles"},
}

func newPropagator(t *testing.T, tr remote.Transport, p remote.Prompter, confirm bool) *remote.Propagator {
	t.Helper()
	prop, err := remote.New(remote.Options{
		Transport:   tr,
		Prompter:    p,
		Confirm:     confirm,
		LocalDir:    "/home/me/dotfiles",
		RemoteDir:   "~/dotfiles",
		SyncCommand: "cd {{.Dir}} && ./dotsync sync --local",
	})
	require.NoError(t, err)
	return prop
}

func TestPropagateAllHosts(t *testing.T) {
	tr := &fakeTransport{}
	results := newPropagator(t, tr, nil, false).Run(context.Background(), hosts)

	require.Len(t, results, 2)
	assert.Equal(t, types.StatusSynced, results[0].Status)
	assert.Equal(t, types.StatusSynced, results[1].Status)
	assert.Equal(t, []string{
		"oracle:/home/me/dotfiles->~/dotfiles",
		"evertz:/home/me/dotfiles->~/src/dotfiles",
	}, tr.transfers)
	assert.Equal(t, []string{
		"oracle:cd ~/dotfiles && ./dotsync sync --local",
		"evertz:cd ~/src/dotfiles && ./dotsync sync --local",
	}, tr.commands)
}

func TestPropagateFailureDoesNotBlockOthers(t *testing.T) {
	tr := &fakeTransport{failTransfer: map[string]bool{"oracle": true}}
	results := newPropagator(t, tr, nil, false).Run(context.Background(), hosts)

	assert.Equal(t, types.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "connection reset")
	assert.Equal(t, types.StatusSynced, results[1].Status)
	assert.Len(t, tr.commands, 1, "no remote sync after a failed transfer")
}

func TestPropagateRemoteSyncFailure(t *testing.T) {
	tr := &fakeTransport{failExec: map[string]bool{"evertz": true}}
	results := newPropagator(t, tr, nil, false).Run(context.Background(), hosts)

	assert.Equal(t, types.StatusSynced, results[0].Status)
	assert.Equal(t, types.StatusFailed, results[1].Status)
	assert.Equal(t, "permission denied", results[1].Output)
	assert.Equal(t, 1, types.CountFailedHosts(results))
}

func TestPropagateConfirmation(t *testing.T) {
	tr := &fakeTransport{}
	prompter := &scriptedPrompter{answers: map[string]bool{"oracle": false, "evertz": true}}
	results := newPropagator(t, tr, prompter, true).Run(context.Background(), hosts)

	assert.Len(t, prompter.asked, 2)
	assert.Equal(t, types.StatusDeclined, results[0].Status)
	assert.Equal(t, types.StatusSynced, results[1].Status)
	assert.Equal(t, []string{"evertz:/home/me/dotfiles->~/src/dotfiles"}, tr.transfers)
}

func TestPropagateDryRun(t *testing.T) {
	tr := &fakeTransport{}
	prop, err := remote.New(remote.Options{
		Transport:   tr,
		RemoteDir:   "~/dotfiles",
		SyncCommand: "cd {{.Dir}} && make",
		DryRun:      true,
	})
	require.NoError(t, err)

	results := prop.Run(context.Background(), hosts[:1])
	assert.Equal(t, types.StatusDryRun, results[0].Status)
	assert.Equal(t, "cd ~/dotfiles && make", results[0].Output)
	assert.Empty(t, tr.transfers)
}

func TestPropagateBacksUpRemoteConfigs(t *testing.T) {
	home := t.TempDir()
	session := backup.NewSession(filesystem.NewOS(), filepath.Join(home, "backups"), home, time.Now())
	tr := &fakeTransport{files: map[string]string{
		`oracle:cat "$HOME"/'.zshrc'`:     "plugins=(git)\n",
		`oracle:cat "$HOME"/'.tmux.conf'`: "set -g mouse on\n",
		`evertz:cat "$HOME"/'.tmux.conf'`: "set -g prefix C-a\n",
	}}
	prop, err := remote.New(remote.Options{
		Transport:   tr,
		RemoteDir:   "~/dotfiles",
		SyncCommand: "true",
		Backup:      session,
		BackupFiles: []string{"~/.zshrc", "~/.tmux.conf"},
	})
	require.NoError(t, err)

	results := prop.Run(context.Background(), hosts)
	require.Len(t, results, 2)
	assert.Equal(t, types.StatusSynced, results[0].Status)
	assert.Equal(t, types.StatusSynced, results[1].Status, "a missing remote file is not a failure")

	assert.Equal(t, []string{
		filepath.Join(session.Dir(), "oracle", ".zshrc"),
		filepath.Join(session.Dir(), "oracle", ".tmux.conf"),
	}, results[0].Backups)
	assert.Equal(t, []string{filepath.Join(session.Dir(), "evertz", ".tmux.conf")}, results[1].Backups)

	saved, err := os.ReadFile(filepath.Join(session.Dir(), "oracle", ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "plugins=(git)\n", string(saved))

	// backups happen before the transfer
	assert.Equal(t, `oracle:cat "$HOME"/'.zshrc'`, tr.commands[0])
	assert.Equal(t, "oracle:true", tr.commands[2])
}

func TestPropagateDeclinedHostIsNotBackedUp(t *testing.T) {
	home := t.TempDir()
	session := backup.NewSession(filesystem.NewOS(), filepath.Join(home, "backups"), home, time.Now())
	tr := &fakeTransport{files: map[string]string{`oracle:cat "$HOME"/'.zshrc'`: "x"}}
	prop, err := remote.New(remote.Options{
		Transport:   tr,
		Prompter:    &scriptedPrompter{},
		Confirm:     true,
		SyncCommand: "true",
		Backup:      session,
		BackupFiles: []string{"~/.zshrc"},
	})
	require.NoError(t, err)

	results := prop.Run(context.Background(), hosts[:1])
	assert.Equal(t, types.StatusDeclined, results[0].Status)
	assert.Empty(t, tr.commands)
	assert.False(t, session.Created())
}

func TestPropagateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newPropagator(t, &fakeTransport{}, nil, false).Run(ctx, hosts)
	assert.Equal(t, types.StatusSkipped, results[0].Status)
	assert.Equal(t, types.StatusSkipped, results[1].Status)
}

func TestNewRejectsBadTemplate(t *testing.T) {
	_, err := remote.New(remote.Options{Transport: &fakeTransport{}, SyncCommand: "cd {{.Dir"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	_, err = remote.New(remote.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
