package dotsync

import (
	"github.com/arthur-debert/dotsync/pkg/analyze"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/generate"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "generate [files...]",
		Short:     MsgGenerateShort,
		Long:      MsgGenerateLong,
		GroupID:   "core",
		ValidArgs: generate.Names(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			analyzer := &analyze.Analyzer{
				ZshrcPath: a.mappingTarget(generate.NameZshrc, "~/.zshrc"),
				TmuxPath:  a.mappingTarget(generate.NameTmux, "~/.tmux.conf"),
			}
			report, err := analyzer.Run()
			if err != nil {
				return err
			}

			g := &generate.Generator{Session: a.newSession(), DryRun: a.dryRun}
			results := g.Run(cmd.Context(), a.generateFiles(args), generate.PlanFrom(report))
			if err := a.renderer.RenderResult(results); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Status.IsFailure() {
					failed++
				}
			}
			if failed > 0 {
				return errors.Newf(errors.ErrCommandFailed, MsgErrFilesFailed, failed, len(results))
			}
			return nil
		},
	}
}

// generateFiles places each named file at the source of the mapping with
// the same name, or at its default location in the checkout
func (a *app) generateFiles(names []string) []generate.File {
	if len(names) == 0 {
		names = generate.Names()
	}
	files := make([]generate.File, 0, len(names))
	for _, name := range names {
		source := generate.DefaultSources[name]
		for _, m := range a.cfg.Sync.Mappings {
			if m.Name == name {
				source = m.Source
				break
			}
		}
		files = append(files, generate.File{Name: name, Path: a.paths.ResolveSource(source)})
	}
	return files
}
