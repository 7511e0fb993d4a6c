package dotsync

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/installer"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/remote"
	"github.com/arthur-debert/dotsync/pkg/syncer"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		dryRun    bool
		format    string
	)

	rootCmd := &cobra.Command{
		Use:     "dotsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but still fail
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&format, "format", "", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newTemplatesCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// hostNamesCompletion completes configured host names
func hostNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := loadApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, h := range a.cfg.Remote.Hosts {
		if !contains(args, h.Name) {
			names = append(names, h.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// toolNamesCompletion completes configured tool names
func toolNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := loadApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, t := range a.cfg.Install.Tools {
		if !contains(args, t.Name) {
			names = append(names, t.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func newSyncCmd() *cobra.Command {
	var (
		local    bool
		enhanced bool
		yes      bool
		hosts    []string
	)
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			log.Info().
				Bool("local", local).
				Bool("enhanced", enhanced).
				Msg("Syncing dotfiles")

			session := a.newSession()
			opts := syncer.Options{
				Paths:    a.paths,
				Mappings: a.cfg.Sync.Mappings,
				DryRun:   a.dryRun,
				Session:  session,
			}
			if enhanced {
				opts.Extra = a.mcpDeployer()
			}
			report, err := syncer.New(opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.renderer.RenderResult(report); err != nil {
				return err
			}

			var failures []string
			if n := report.Failed(); n > 0 {
				total := len(report.Results)
				if report.MCP != nil {
					total++
				}
				failures = append(failures, fmt.Sprintf(MsgErrSyncFailed, n, total))
			}

			if !local {
				results, err := a.propagate(cmd.Context(), session, hosts, "", yes)
				if err != nil {
					return err
				}
				if n := types.CountFailedHosts(results); n > 0 {
					failures = append(failures, fmt.Sprintf(MsgErrPushFailed, n, len(results)))
				}
			}

			if len(failures) > 0 {
				return errors.New(errors.ErrCommandFailed, strings.Join(failures, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, MsgFlagLocal)
	cmd.Flags().BoolVar(&enhanced, "enhanced", false, MsgFlagEnhanced)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().StringArrayVar(&hosts, "host", nil, MsgFlagHost)
	_ = cmd.RegisterFlagCompletionFunc("host", hostNamesCompletion)
	return cmd
}

func newPushCmd() *cobra.Command {
	var (
		yes       bool
		transport string
	)
	cmd := &cobra.Command{
		Use:               "push [hosts...]",
		Short:             MsgPushShort,
		Long:              MsgPushLong,
		Example:           MsgPushExample,
		GroupID:           "core",
		ValidArgsFunction: hostNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			results, err := a.propagate(cmd.Context(), a.newSession(), args, transport, yes)
			if err != nil {
				return err
			}
			if n := types.CountFailedHosts(results); n > 0 {
				return errors.Newf(errors.ErrCommandFailed, MsgErrPushFailed, n, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().StringVar(&transport, "transport", "", MsgFlagTransport)
	_ = cmd.RegisterFlagCompletionFunc("transport", cobra.FixedCompletions(
		[]string{config.TransportRsync, config.TransportNative}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// propagate pushes the checkout to the selected hosts and renders the
// outcome. An empty transport uses remote.transport. Remote configs are
// saved into session before they are replaced.
func (a *app) propagate(ctx context.Context, session *backup.Session, names []string, transport string, yes bool) ([]types.HostResult, error) {
	hosts, err := a.selectHosts(names)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		log.Info().Msg(MsgNoHosts)
	}
	t, err := a.transport(transport)
	if err != nil {
		return nil, err
	}

	var prompter remote.Prompter = remote.NewTerminalPrompter()
	if yes {
		prompter = remote.AlwaysYes{}
	}
	p, err := remote.New(remote.Options{
		Transport:   t,
		Prompter:    prompter,
		Confirm:     a.cfg.Remote.Confirm && !yes,
		LocalDir:    a.paths.DotfilesRoot(),
		RemoteDir:   a.cfg.Remote.RemoteDir,
		SyncCommand: a.cfg.Remote.SyncCommand,
		DryRun:      a.dryRun,
		Backup:      session,
		BackupFiles: a.cfg.Remote.BackupFiles,
	})
	if err != nil {
		return nil, err
	}

	results := p.Run(ctx, hosts)
	if err := a.renderer.RenderResult(results); err != nil {
		return nil, err
	}
	return results, nil
}

// selectHosts returns the configured hosts named, or all of them
func (a *app) selectHosts(names []string) ([]types.Host, error) {
	if len(names) == 0 {
		return a.cfg.Remote.Hosts, nil
	}
	hosts := make([]types.Host, 0, len(names))
	for _, name := range names {
		h, ok := a.cfg.HostByName(name)
		if !ok {
			known := make([]string, len(a.cfg.Remote.Hosts))
			for i, h := range a.cfg.Remote.Hosts {
				known[i] = h.Name
			}
			return nil, errors.Newf(errors.ErrNotFound, "unknown host %q", name).
				WithDetail("configured", known)
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (a *app) transport(name string) (remote.Transport, error) {
	if name == "" {
		name = a.cfg.Remote.Transport
	}
	switch name {
	case config.TransportRsync:
		return &remote.RsyncTransport{
			Runner:   a.runner,
			Excludes: a.cfg.Remote.Excludes,
			Delete:   a.cfg.Remote.Delete,
			Stream:   a.stream(),
		}, nil
	case config.TransportNative:
		identities := make([]string, len(a.cfg.Remote.IdentityFiles))
		for i, f := range a.cfg.Remote.IdentityFiles {
			identities[i] = a.paths.Expand(f)
		}
		return &remote.NativeTransport{
			KnownHosts:    a.paths.Expand(a.cfg.Remote.KnownHosts),
			IdentityFiles: identities,
			Excludes:      a.cfg.Remote.Excludes,
			Timeout:       a.cfg.Runner.Timeout,
		}, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown transport %q", name).
			WithDetail("valid", []string{config.TransportRsync, config.TransportNative})
	}
}

func newInstallCmd() *cobra.Command {
	var (
		check bool
		hosts []string
	)
	cmd := &cobra.Command{
		Use:               "install [tools...]",
		Short:             MsgInstallShort,
		Long:              MsgInstallLong,
		Example:           MsgInstallExample,
		GroupID:           "core",
		ValidArgsFunction: toolNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if len(hosts) > 0 {
				return a.installOnHosts(cmd.Context(), hosts, args, check)
			}

			var manager installer.Manager
			if !check {
				manager, err = installer.Detect(a.runner, installer.DetectOptions{
					GOOS:       runtime.GOOS,
					Candidates: a.cfg.Install.Managers,
					UseSudo:    a.cfg.Install.Sudo,
					IsRoot:     os.Geteuid() == 0,
				})
				if err != nil {
					return err
				}
				log.Info().Str("manager", manager.Name).Bool("sudo", manager.Sudo).Msg("Using package manager")
			}

			results := installer.New(installer.Options{
				Runner:    a.runner,
				Manager:   manager,
				Tools:     a.selectTools(args),
				CheckOnly: check,
				DryRun:    a.dryRun,
				Stream:    a.stream(),
			}).Run(cmd.Context())
			if err := a.renderer.RenderResult(results); err != nil {
				return err
			}
			if n := types.CountFailedTools(results); n > 0 {
				return errors.Newf(errors.ErrCommandFailed, MsgErrToolsFailed, n, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, MsgFlagCheck)
	cmd.Flags().StringArrayVar(&hosts, "host", nil, MsgFlagOnHost)
	_ = cmd.RegisterFlagCompletionFunc("host", hostNamesCompletion)
	return cmd
}

// installOnHosts runs the installer on each named host over the
// configured transport, one host after the other
func (a *app) installOnHosts(ctx context.Context, names, tools []string, check bool) error {
	hosts, err := a.selectHosts(names)
	if err != nil {
		return err
	}
	t, err := a.transport("")
	if err != nil {
		return err
	}

	opts := installer.Options{
		Tools:     a.selectTools(tools),
		CheckOnly: check,
		DryRun:    a.dryRun,
		Stream:    a.stream(),
	}
	detect := installer.DetectOptions{
		Candidates: a.cfg.Install.Managers,
		UseSudo:    a.cfg.Install.Sudo,
	}
	results := make([]types.HostInstallResult, 0, len(hosts))
	for _, host := range hosts {
		results = append(results, installer.RunOnHost(ctx, host, remote.NewHostRunner(t, host), opts, detect))
	}
	if err := a.renderer.RenderResult(results); err != nil {
		return err
	}
	if n := types.CountFailedInstalls(results); n > 0 {
		return errors.Newf(errors.ErrCommandFailed, MsgErrHostsFailed, n, len(results))
	}
	return nil
}

// selectTools returns the configured tools named, or all of them. A name
// that is not configured is installed as a package of the same name.
func (a *app) selectTools(names []string) []types.Tool {
	if len(names) == 0 {
		return a.cfg.Install.Tools
	}
	tools := make([]types.Tool, 0, len(names))
	for _, name := range names {
		if t, ok := a.cfg.ToolByName(name); ok {
			tools = append(tools, t)
			continue
		}
		log.Debug().Str("tool", name).Msg("Tool not configured, using its name as the package")
		tools = append(tools, types.Tool{Name: name})
	}
	return tools
}
