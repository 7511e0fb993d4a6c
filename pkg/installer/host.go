package installer

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// PlatformRunner is a Runner that can describe the machine it acts on
type PlatformRunner interface {
	runner.Runner
	Platform(ctx context.Context) (goos string, root bool, err error)
}

// RunOnHost detects the package manager of the machine behind r and
// installs opts.Tools there. A host without a usable manager is reported
// as failed instead of aborting, so other hosts still run.
func RunOnHost(ctx context.Context, host types.Host, r PlatformRunner, opts Options, detect DetectOptions) types.HostInstallResult {
	logger := logging.GetLogger("installer").With().Str("host", host.Name).Logger()
	res := types.HostInstallResult{Host: host}

	goos, root, err := r.Platform(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Cannot identify host")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}
	logger.Debug().Str("goos", goos).Bool("root", root).Msg("Identified host")

	opts.Runner = r
	if !opts.CheckOnly {
		detect.GOOS, detect.IsRoot = goos, root
		manager, err := Detect(r, detect)
		if err != nil {
			logger.Error().Err(err).Msg("No package manager on host")
			res.Status = types.StatusFailed
			res.Error = err.Error()
			return res
		}
		opts.Manager = manager
		res.Manager = manager.Name
	}

	res.Tools = New(opts).Run(ctx)
	switch {
	case types.CountFailedTools(res.Tools) > 0:
		res.Status = types.StatusFailed
	case opts.DryRun:
		res.Status = types.StatusDryRun
	default:
		res.Status = types.StatusDone
	}
	return res
}
