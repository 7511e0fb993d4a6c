// Package installer makes sure the configured CLI tools are on PATH,
// installing the missing ones with the machine's package manager. A tool
// that fails to install is reported and the rest continue.
package installer

import (
	"context"
	"io"

	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Options configures an install run
type Options struct {
	Runner    runner.Runner
	Manager   Manager
	Tools     []types.Tool
	CheckOnly bool
	DryRun    bool
	Stream    io.Writer
}

// Installer processes tools in order
type Installer struct {
	opts Options
}

// New returns an Installer
func New(opts Options) *Installer {
	return &Installer{opts: opts}
}

// Run checks and installs every tool
func (i *Installer) Run(ctx context.Context) []types.ToolResult {
	done := logging.LogOperationStart(logging.GetLogger("installer"), "install")
	defer done()

	results := make([]types.ToolResult, 0, len(i.opts.Tools))
	for _, tool := range i.opts.Tools {
		if ctx.Err() != nil {
			results = append(results, types.ToolResult{Tool: tool, Status: types.StatusSkipped, Error: ctx.Err().Error()})
			continue
		}
		results = append(results, i.installOne(ctx, tool))
	}
	return results
}

func (i *Installer) installOne(ctx context.Context, tool types.Tool) types.ToolResult {
	logger := logging.GetLogger("installer").With().Str("tool", tool.Name).Logger()
	res := types.ToolResult{Tool: tool}

	if bin, ok := Find(i.opts.Runner, tool); ok {
		logger.Debug().Str("binary", bin).Msg("Already installed")
		res.Status = types.StatusPresent
		res.Binary = bin
		return res
	}

	if i.opts.CheckOnly {
		res.Status = types.StatusSkipped
		return res
	}

	pkg, ok := tool.PackageFor(i.opts.Manager.Name)
	if !ok {
		logger.Info().Str("manager", i.opts.Manager.Name).Msg("No package for this manager")
		res.Status = types.StatusUnavailable
		return res
	}
	res.Package = pkg

	cmd := i.opts.Manager.InstallCmd(pkg)
	cmd.Stream = i.opts.Stream
	res.Command = cmd.String()

	if i.opts.DryRun {
		res.Status = types.StatusDryRun
		return res
	}

	logger.Info().Str("command", res.Command).Msg("Installing")
	out, err := i.opts.Runner.Run(ctx, cmd)
	res.Output = out.Output
	if err != nil {
		logger.Error().Err(err).Msg("Install failed")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	res.Status = types.StatusInstalled
	return res
}

// Find returns the first of the tool's binaries found on PATH
func Find(r runner.Runner, tool types.Tool) (string, bool) {
	for _, bin := range tool.Candidates() {
		if _, err := r.LookPath(bin); err == nil {
			return bin, true
		}
	}
	return "", false
}

// Partition splits tools into present and missing names
func Partition(r runner.Runner, tools []types.Tool) (present, missing []string) {
	for _, tool := range tools {
		if _, ok := Find(r, tool); ok {
			present = append(present, tool.Name)
		} else {
			missing = append(missing, tool.Name)
		}
	}
	return present, missing
}
