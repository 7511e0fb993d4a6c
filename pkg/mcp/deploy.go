package mcp

import (
	"context"
	"os"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Deployer copies the MCP configuration from the dotfiles checkout to the
// app's config path, rewriting home directories for this machine.
type Deployer struct {
	Source string
	Target string
	Key    string
	Home   string
	// From lists home prefixes to replace; detected when empty
	From []string
	FS   filesystem.FS
}

// Apply runs the deployment inside an existing backup session
func (d *Deployer) Apply(_ context.Context, session *backup.Session, dryRun bool) types.MCPResult {
	logger := logging.GetLogger("mcp.deploy")
	res := types.MCPResult{Source: d.Source, Target: d.Target}
	fsys := d.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	data, err := fsys.ReadFile(d.Source)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("source", d.Source).Msg("No MCP config in dotfiles, skipping")
			res.Status = types.StatusMissingSource
			return res
		}
		return fail(res, errors.Wrapf(err, errors.ErrMCPConfig, "cannot read %s", d.Source))
	}

	doc, err := Parse(d.Source, d.Key, data)
	if err != nil {
		return fail(res, err)
	}
	content, n, err := RewriteHome(doc.Content, doc.Key, d.From, d.Home)
	if err != nil {
		return fail(res, err)
	}
	res.Replacements = n

	existing, readErr := fsys.ReadFile(d.Target)
	exists := readErr == nil
	if exists && string(existing) == content {
		res.Status = types.StatusAlreadyLinked
		return res
	}

	if dryRun {
		res.Status = types.StatusDryRun
		if exists {
			res.BackupPath = session.PathFor(d.Target)
		}
		return res
	}

	if exists {
		backupPath, err := session.Save(d.Target)
		if err != nil {
			return fail(res, err)
		}
		res.BackupPath = backupPath
	}

	if err := filesystem.WriteFileAtomic(fsys, d.Target, []byte(content), 0644); err != nil {
		return fail(res, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", d.Target))
	}

	if exists {
		res.Status = types.StatusBackedUp
	} else {
		res.Status = types.StatusSynced
	}
	logger.Info().Str("target", d.Target).Int("replacements", n).Msg("Deployed MCP config")
	return res
}

func fail(res types.MCPResult, err error) types.MCPResult {
	logger := logging.GetLogger("mcp.deploy")
	logger.Error().Err(err).Msg("MCP deploy failed")
	res.Status = types.StatusFailed
	res.Error = err.Error()
	return res
}

// FixPaths rewrites home prefixes in place, backing up the file first
func FixPaths(path, key string, from []string, to string, session *backup.Session) (int, error) {
	doc, err := Load(path, key)
	if err != nil {
		return 0, err
	}
	content, n, err := RewriteHome(doc.Content, doc.Key, from, to)
	if err != nil || n == 0 {
		return 0, err
	}
	if session != nil {
		if _, err := session.Save(path); err != nil {
			return 0, err
		}
	}
	if err := filesystem.WriteFileAtomic(filesystem.NewOS(), path, []byte(content), 0644); err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return n, nil
}
