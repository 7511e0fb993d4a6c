// Package syncer links dotfiles into place. Each existing target that is
// not already the right link is copied into a backup session first. One
// mapping failing never stops the others.
package syncer

import (
	"context"
	"io/fs"
	"time"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/rs/zerolog"
)

// Extra is an additional step run after the mappings in the same backup
// session. Enhanced mode uses it to deploy the MCP configuration.
type Extra interface {
	Apply(ctx context.Context, session *backup.Session, dryRun bool) types.MCPResult
}

// Options configures a sync run
type Options struct {
	Paths      paths.Paths
	Mappings   []types.Mapping
	BackupRoot string
	DryRun     bool
	FS         filesystem.FS
	Linker     Linker
	Extra      Extra
	Now        func() time.Time
	// Session is shared with later steps, such as remote backups, when set
	Session *backup.Session
}

// Syncer runs one sync invocation
type Syncer struct {
	opts    Options
	session *backup.Session
	logger  zerolog.Logger
}

// New builds a Syncer, filling in the real filesystem and clock when unset
func New(opts Options) *Syncer {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Linker == nil {
		opts.Linker = NewLinker()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	session := opts.Session
	if session == nil {
		root := opts.Paths.Expand(opts.BackupRoot)
		session = backup.NewSession(opts.FS, root, opts.Paths.HomeDir(), opts.Now())
	}
	return &Syncer{
		opts:    opts,
		session: session,
		logger:  logging.GetLogger("syncer"),
	}
}

// Session exposes the backup session for callers that add their own steps
func (s *Syncer) Session() *backup.Session { return s.session }

// Run processes every mapping in order and returns the report. The error
// is only non-nil when ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) (*types.SyncReport, error) {
	done := logging.LogOperationStart(s.logger, "sync")
	defer done()

	report := &types.SyncReport{DryRun: s.opts.DryRun}
	for _, m := range s.opts.Mappings {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, s.syncOne(ctx, m))
	}

	if s.opts.Extra != nil {
		res := s.opts.Extra.Apply(ctx, s.session, s.opts.DryRun)
		report.MCP = &res
	}

	if s.session.Created() {
		report.BackupDir = s.session.Dir()
	}
	return report, nil
}

func (s *Syncer) syncOne(ctx context.Context, m types.Mapping) types.MappingResult {
	source := s.opts.Paths.ResolveSource(m.Source)
	target := s.opts.Paths.Expand(m.Target)
	res := types.MappingResult{Mapping: m, SourcePath: source, TargetPath: target}
	logger := s.logger.With().Str("mapping", m.DisplayName()).Str("target", target).Logger()

	if _, err := s.opts.FS.Stat(source); err != nil {
		logger.Warn().Str("source", source).Msg("Source missing, skipping")
		res.Status = types.StatusMissingSource
		res.Error = errors.Newf(errors.ErrSourceMissing, "source %s not found", source).Error()
		return res
	}

	if filesystem.LinkPointsTo(s.opts.FS, target, source) {
		logger.Debug().Msg("Already linked")
		res.Status = types.StatusAlreadyLinked
		return res
	}

	info, statErr := s.opts.FS.Lstat(target)
	exists := statErr == nil

	if s.opts.DryRun {
		res.Status = types.StatusDryRun
		if exists {
			res.BackupPath = s.session.PathFor(target)
		}
		return res
	}

	if exists {
		backupPath, err := s.session.Save(target)
		if err != nil {
			logger.Error().Err(err).Msg("Backup failed, leaving target untouched")
			res.Status = types.StatusFailed
			res.Error = err.Error()
			return res
		}
		res.BackupPath = backupPath

		if info.IsDir() && info.Mode()&fs.ModeSymlink == 0 {
			if err := s.opts.FS.RemoveAll(target); err != nil {
				logger.Error().Err(err).Msg("Cannot clear directory target")
				res.Status = types.StatusFailed
				res.Error = errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", target).Error()
				return res
			}
		}
	}

	if err := s.opts.Linker.Link(ctx, source, target); err != nil {
		logger.Error().Err(err).Msg("Link failed")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	if exists {
		res.Status = types.StatusBackedUp
	} else {
		res.Status = types.StatusLinked
	}
	logger.Info().Str("status", string(res.Status)).Msg("Synced")
	return res
}
