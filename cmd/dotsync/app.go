package dotsync

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/mcp"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is everything a command needs after paths and configuration are
// resolved
type app struct {
	paths    paths.Paths
	cfg      *config.Config
	cfgOpts  config.Options
	runner   runner.Runner
	renderer ui.Renderer
	format   ui.Format
	out      io.Writer
	errOut   io.Writer
	dryRun   bool
	verbose  int
}

// loadApp resolves the dotfiles root, loads configuration and builds the
// output renderer for cmd
func loadApp(cmd *cobra.Command) (*app, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	opts := configOptions(p)
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	// sync.dotfiles_dir outranks git discovery but not DOTFILES_ROOT
	if os.Getenv(paths.EnvDotfilesRoot) == "" {
		if dir := p.Expand(cfg.Sync.DotfilesDir); dir != "" && dir != p.DotfilesRoot() && isDir(dir) {
			log.Debug().Str("dir", dir).Msg("Using sync.dotfiles_dir as dotfiles root")
			if p, err = paths.New(dir); err != nil {
				return nil, fmt.Errorf(MsgErrInitPaths, err)
			}
			opts = configOptions(p)
			if cfg, err = config.Load(opts); err != nil {
				return nil, fmt.Errorf(MsgErrLoadConfig, err)
			}
		}
	}

	if p.UsedFallback() {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning, p.DotfilesRoot())
	}

	flags := cmd.Root().PersistentFlags()
	dryRun, _ := flags.GetBool("dry-run")
	verbose, _ := flags.GetCount("verbose")
	formatName, _ := flags.GetString("format")
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	format = ui.Resolve(format, out)
	renderer, err := ui.NewRenderer(format, out)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dotfiles_root", p.DotfilesRoot()).
		Bool("dry_run", dryRun).
		Str("format", format.String()).
		Msg("Loaded configuration")

	return &app{
		paths:    p,
		cfg:      cfg,
		cfgOpts:  opts,
		runner:   runner.New(cfg.Runner.Timeout),
		renderer: renderer,
		format:   format,
		out:      out,
		errOut:   cmd.ErrOrStderr(),
		dryRun:   dryRun,
		verbose:  verbose,
	}, nil
}

func configOptions(p paths.Paths) config.Options {
	return config.Options{
		UserConfigPath: p.UserConfigPath(),
		RootConfigPath: p.RootConfigPath(),
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// stream is where external command output is mirrored; only with -v
func (a *app) stream() io.Writer {
	if a.verbose > 0 {
		return a.errOut
	}
	return nil
}

func (a *app) newSession() *backup.Session {
	return backup.NewSession(filesystem.NewOS(), a.paths.Expand(a.cfg.Sync.BackupRoot), a.paths.HomeDir(), time.Now())
}

func (a *app) mcpConfigPath() string {
	if a.cfg.MCP.ConfigPath != "" {
		return a.paths.Expand(a.cfg.MCP.ConfigPath)
	}
	return mcp.ConfigPath(runtime.GOOS, a.paths.HomeDir())
}

func (a *app) mcpLogs() *mcp.Logs {
	dir := mcp.LogDir(runtime.GOOS, a.paths.HomeDir())
	if a.cfg.MCP.LogDir != "" {
		dir = a.paths.Expand(a.cfg.MCP.LogDir)
	}
	return &mcp.Logs{Dir: dir, Glob: a.cfg.MCP.LogGlob}
}

func (a *app) mcpCLI() *mcp.CLI {
	return &mcp.CLI{Runner: a.runner, Command: a.cfg.MCP.CLI, Stream: a.stream()}
}

func (a *app) mcpDeployer() *mcp.Deployer {
	return &mcp.Deployer{
		Source: a.paths.ResolveSource(a.cfg.MCP.Source),
		Target: a.mcpConfigPath(),
		Key:    a.cfg.MCP.ServersKey,
		Home:   a.paths.HomeDir(),
	}
}
