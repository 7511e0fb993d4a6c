// Package generate writes zsh, tmux and starship configs into the
// dotfiles checkout. Content comes from built-in recommendations merged
// with whatever the machine already uses, as reported by analyze.
package generate

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"strings"
	"text/template"

	"github.com/arthur-debert/dotsync/pkg/analyze"
	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*
var embedded embed.FS

// Names of the files generate knows how to produce. They match the
// default mapping names.
const (
	NameZshrc    = "zshrc"
	NameTmux     = "tmux"
	NameStarship = "starship"
)

// DefaultSources are the checkout paths written when no mapping overrides them
var DefaultSources = map[string]string{
	NameZshrc:    "zsh/zshrc",
	NameTmux:     "tmux/tmux.conf",
	NameStarship: "config/starship.toml",
}

// Names lists the generated files in output order
func Names() []string {
	return []string{NameZshrc, NameTmux, NameStarship}
}

var assets = map[string]string{
	NameZshrc:    "embedded/zshrc.tmpl",
	NameTmux:     "embedded/tmux.conf.tmpl",
	NameStarship: "embedded/starship.toml",
}

var funcs = template.FuncMap{
	"squote": func(s string) string { return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'" },
	"dquote": func(s string) string {
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")
		return `"` + r.Replace(s) + `"`
	},
}

// File is one config to write
type File struct {
	Name string
	Path string
}

// Generator renders and writes config files
type Generator struct {
	FS filesystem.FS
	// Session receives the previous content of files that change
	Session *backup.Session
	DryRun  bool
}

// Render returns the content for one named file
func Render(name string, plan *Plan) ([]byte, error) {
	asset, ok := assets[name]
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "cannot generate %q", name).
			WithDetail("valid", Names())
	}
	raw, err := fs.ReadFile(embedded, asset)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "missing built-in %s", asset)
	}

	var data interface{}
	switch name {
	case NameZshrc:
		data = plan.Zsh
	case NameTmux:
		data = plan.Tmux
	default:
		// starship carries no machine-specific content
		if err := validateTOML(raw); err != nil {
			return nil, err
		}
		return raw, nil
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "bad built-in template %s", asset)
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot render %s", name)
	}
	return b.Bytes(), nil
}

func validateTOML(data []byte) error {
	var v map[string]interface{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "built-in starship config is not valid TOML")
	}
	return nil
}

// Run writes every file. Existing files with different content are
// backed up first; identical ones are left alone. One failing file does
// not stop the others.
func (g *Generator) Run(ctx context.Context, files []File, plan *Plan) []types.GeneratedFile {
	done := logging.LogOperationStart(logging.GetLogger("generate"), "generate")
	defer done()

	if g.FS == nil {
		g.FS = filesystem.NewOS()
	}
	results := make([]types.GeneratedFile, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			results = append(results, types.GeneratedFile{Name: f.Name, Path: f.Path, Status: types.StatusSkipped, Error: ctx.Err().Error()})
			continue
		}
		results = append(results, g.writeOne(f, plan))
	}
	return results
}

func (g *Generator) writeOne(f File, plan *Plan) types.GeneratedFile {
	logger := logging.GetLogger("generate").With().Str("file", f.Name).Str("path", f.Path).Logger()
	res := types.GeneratedFile{Name: f.Name, Path: f.Path}
	fail := func(err error) types.GeneratedFile {
		logger.Error().Err(err).Msg("Generation failed")
		res.Status = types.StatusFailed
		res.Error = err.Error()
		return res
	}

	content, err := Render(f.Name, plan)
	if err != nil {
		return fail(err)
	}

	current, readErr := g.FS.ReadFile(f.Path)
	exists := readErr == nil
	if exists && bytes.Equal(current, content) {
		logger.Debug().Msg("Already up to date")
		res.Status = types.StatusUnchanged
		return res
	}

	if g.DryRun {
		if exists && g.Session != nil {
			res.BackupPath = g.Session.PathFor(f.Path)
		}
		res.Status = types.StatusDryRun
		return res
	}

	if exists && g.Session != nil {
		dest, err := g.Session.Save(f.Path)
		if err != nil {
			return fail(err)
		}
		res.BackupPath = dest
	}

	if err := filesystem.WriteFileAtomic(g.FS, f.Path, content, 0644); err != nil {
		return fail(errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", f.Path))
	}
	logger.Info().Msg("Generated")
	res.Status = types.StatusWritten
	return res
}

// PlanFrom is a convenience for callers holding an analyze report
func PlanFrom(report *analyze.Report) *Plan {
	if report == nil {
		return NewPlan(analyze.ZshReport{}, analyze.TmuxReport{})
	}
	return NewPlan(report.Zsh, report.Tmux)
}
