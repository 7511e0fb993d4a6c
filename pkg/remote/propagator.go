// Package remote pushes the dotfiles checkout to other machines and runs
// a local-only sync there. Hosts are handled one after another; a host
// that fails is reported and the next one still runs.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"text/template"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures a Propagator
type Options struct {
	Transport   Transport
	Prompter    Prompter
	Confirm     bool
	LocalDir    string
	RemoteDir   string
	SyncCommand string
	DryRun      bool
	// Backup receives each host's BackupFiles before the transfer
	// overwrites them. Nil disables remote backups.
	Backup      *backup.Session
	BackupFiles []string
}

// Propagator runs the transfer-then-sync sequence per host
type Propagator struct {
	opts Options
	tmpl *template.Template
}

// New validates the sync command template and returns a Propagator
func New(opts Options) (*Propagator, error) {
	if opts.Transport == nil {
		return nil, errors.New(errors.ErrInvalidInput, "remote transport is required")
	}
	if opts.Prompter == nil {
		opts.Prompter = AlwaysYes{}
	}
	tmpl, err := template.New("sync_command").Option("missingkey=error").Parse(opts.SyncCommand)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid remote sync command")
	}
	return &Propagator{opts: opts, tmpl: tmpl}, nil
}

// Command renders the remote sync command for a remote directory
func (p *Propagator) Command(dir string) (string, error) {
	var b bytes.Buffer
	if err := p.tmpl.Execute(&b, struct{ Dir string }{Dir: dir}); err != nil {
		return "", errors.Wrap(err, errors.ErrConfigValid, "cannot render remote sync command")
	}
	return b.String(), nil
}

// Run pushes to every host in order
func (p *Propagator) Run(ctx context.Context, hosts []types.Host) []types.HostResult {
	results := make([]types.HostResult, 0, len(hosts))
	for _, host := range hosts {
		if ctx.Err() != nil {
			results = append(results, types.HostResult{Host: host, Status: types.StatusSkipped, Error: ctx.Err().Error()})
			continue
		}
		results = append(results, p.pushOne(ctx, host))
	}
	return results
}

func (p *Propagator) pushOne(ctx context.Context, host types.Host) types.HostResult {
	logger := logging.GetLogger("remote").With().Str("host", host.Name).Str("transport", p.opts.Transport.Name()).Logger()
	res := types.HostResult{Host: host}

	dir := host.DotfilesDir
	if dir == "" {
		dir = p.opts.RemoteDir
	}
	command, err := p.Command(dir)
	if err != nil {
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	if p.opts.DryRun {
		res.Status = types.StatusDryRun
		res.Output = command
		return res
	}

	if p.opts.Confirm {
		ok, err := p.opts.Prompter.Confirm(fmt.Sprintf("Sync dotfiles to %s (%s)?", host.Name, host.Address()))
		if err != nil {
			logger.Warn().Err(err).Msg("No confirmation")
			res.Status = types.StatusDeclined
			res.Error = err.Error()
			return res
		}
		if !ok {
			logger.Info().Msg("Declined")
			res.Status = types.StatusDeclined
			return res
		}
	}

	res.Backups = p.backupConfigs(ctx, host, logger)

	logger.Info().Str("dir", dir).Msg("Transferring dotfiles")
	if err := p.opts.Transport.Transfer(ctx, host, p.opts.LocalDir, dir); err != nil {
		logger.Error().Err(err).Msg("Transfer failed")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	logger.Info().Str("command", command).Msg("Running remote sync")
	out, err := p.opts.Transport.Exec(ctx, host, command)
	res.Output = out
	if err != nil {
		logger.Error().Err(err).Msg("Remote sync failed")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	res.Status = types.StatusSynced
	return res
}

// backupConfigs copies the host's current config files into
// <session>/<host>/<basename>. Files the host cannot read are skipped.
func (p *Propagator) backupConfigs(ctx context.Context, host types.Host, logger zerolog.Logger) []string {
	if p.opts.Backup == nil {
		return nil
	}
	var saved []string
	for _, file := range p.opts.BackupFiles {
		out, err := p.opts.Transport.Exec(ctx, host, "cat "+RemotePath(file))
		if err != nil {
			logger.Debug().Err(err).Str("file", file).Msg("Remote file not backed up")
			continue
		}
		rel := filepath.Join(host.Name, path.Base(file))
		dest, err := p.opts.Backup.SaveContent(rel, host.Name+":"+file, []byte(out))
		if err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("Cannot save remote backup")
			continue
		}
		saved = append(saved, dest)
	}
	return saved
}
