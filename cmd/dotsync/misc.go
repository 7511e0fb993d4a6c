package dotsync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/analyze"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/templates"
	"github.com/arthur-debert/dotsync/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"golang.org/x/term"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Short:   MsgTemplatesShort,
		Long:    MsgTemplatesLong,
		GroupID: "core",
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesShowCmd())
	cmd.AddCommand(newTemplatesInstallCmd())
	return cmd
}

func templateNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var names []string
	for _, t := range templates.Default().List() {
		names = append(names, t.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgTplListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.renderer.RenderResult(templates.Default().List())
		},
	}
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             MsgTplShowShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: templateNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			var renderer templates.Renderer = &templates.PlainRenderer{}
			if a.format == ui.FormatTerminal {
				width := 0
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width = w
				}
				renderer = templates.NewGlamourRenderer(width)
			}
			out, err := templates.Default().Render(args[0], renderer)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
}

func newTemplatesInstallCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:               "install <name> [dir]",
		Short:             MsgTplInstallShort,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: templateNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			dir := "."
			if len(args) == 2 {
				dir = a.paths.Expand(args[1])
			}
			catalog := templates.Default()
			if a.dryRun {
				t, err := catalog.Get(args[0])
				if err != nil {
					return err
				}
				return a.renderer.RenderMessage(fmt.Sprintf(MsgTemplateWouldWrite, filepath.Join(dir, t.File)))
			}
			path, err := catalog.Install(args[0], dir, force)
			if err != nil {
				return err
			}
			return a.renderer.RenderMessage(fmt.Sprintf(MsgTemplateWritten, path))
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   MsgAnalyzeShort,
		Long:    MsgAnalyzeLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			analyzer := &analyze.Analyzer{
				ZshrcPath: a.mappingTarget("zshrc", "~/.zshrc"),
				TmuxPath:  a.mappingTarget("tmux", "~/.tmux.conf"),
				Tools:     a.cfg.Install.Tools,
				Runner:    a.runner,
			}
			report, err := analyzer.Run()
			if err != nil {
				return err
			}
			return analyze.Write(a.out, report, format)
		},
	}
	// Shadows the global --format; the report is data, not a rendered view
	cmd.Flags().StringVar(&format, "format", "json", MsgFlagData)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// mappingTarget returns the expanded target of the named mapping, or
// fallback when no mapping has that name
func (a *app) mappingTarget(name, fallback string) string {
	for _, m := range a.cfg.Sync.Mappings {
		if m.Name == name {
			return a.paths.Expand(m.Target)
		}
	}
	return a.paths.Expand(fallback)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
	}
	var defaults bool
	show := &cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultContent())
				return nil
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	cmd.AddCommand(show)
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: MsgConfigPathShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			lines := []string{fmt.Sprintf(MsgDotfilesRoot, a.paths.DotfilesRoot())}
			lines = append(lines, config.Describe(a.cfgOpts)...)
			return a.renderer.RenderResult(lines)
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v, commit, date := version.Resolve()
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, v, commit, date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man <dir>",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", dir)
			}
			header := &doc.GenManHeader{
				Title:   "DOTSYNC",
				Section: "1",
				Source:  "dotsync " + version.Version,
				Manual:  "dotsync manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", dir)
			return nil
		},
	}
}
