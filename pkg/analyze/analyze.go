// Package analyze summarizes the shell and tmux configuration currently
// deployed on this machine, and which of the configured tools exist.
package analyze

import (
	"encoding/json"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/installer"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/runner"
	"github.com/arthur-debert/dotsync/pkg/types"
	"gopkg.in/yaml.v3"
)

var (
	zshPlugins   = regexp.MustCompile(`(?s)plugins=\((.*?)\)`)
	zshAlias     = regexp.MustCompile(`alias\s+([\w.-]+)=['"]([^'"\n]+)['"]`)
	zshExport    = regexp.MustCompile(`export\s+(\w+)=['"]?([^'"\n]+?)['"]?\s*$`)
	zshFunction  = regexp.MustCompile(`(?s)(\w+)\s*\(\)\s*\{([^}]+)\}`)
	tmuxBind     = regexp.MustCompile(`^bind(?:-key)?\s+(?:-\w+\s+)*(\S+)\s+(.+)$`)
	tmuxSet      = regexp.MustCompile(`^set(?:-option)?\s+(?:-\w+\s+)*(\S+)\s+(.+)$`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Report is the full analysis
type Report struct {
	Zsh   ZshReport   `json:"zsh" yaml:"zsh"`
	Tmux  TmuxReport  `json:"tmux" yaml:"tmux"`
	Tools ToolsReport `json:"tools" yaml:"tools"`
}

// ZshReport describes a zshrc
type ZshReport struct {
	Path      string            `json:"path" yaml:"path"`
	Found     bool              `json:"found" yaml:"found"`
	Plugins   []string          `json:"plugins" yaml:"plugins"`
	Aliases   map[string]string `json:"aliases" yaml:"aliases"`
	Exports   map[string]string `json:"exports" yaml:"exports"`
	Functions map[string]string `json:"functions" yaml:"functions"`
}

// TmuxReport describes a tmux.conf
type TmuxReport struct {
	Path     string            `json:"path" yaml:"path"`
	Found    bool              `json:"found" yaml:"found"`
	Bindings map[string]string `json:"bindings" yaml:"bindings"`
	Options  map[string]string `json:"options" yaml:"options"`
}

// ToolsReport splits the configured tools by presence
type ToolsReport struct {
	Installed []string `json:"installed" yaml:"installed"`
	Missing   []string `json:"missing" yaml:"missing"`
}

// Analyzer reads the deployed config files
type Analyzer struct {
	ZshrcPath string
	TmuxPath  string
	Tools     []types.Tool
	Runner    runner.Runner
}

// Run builds the report. Missing files are reported, not treated as errors.
func (a *Analyzer) Run() (*Report, error) {
	logger := logging.GetLogger("analyze")
	report := &Report{}

	zsh, found, err := readOptional(a.ZshrcPath)
	if err != nil {
		return nil, err
	}
	report.Zsh = ParseZsh(zsh)
	report.Zsh.Path, report.Zsh.Found = a.ZshrcPath, found

	tmux, found, err := readOptional(a.TmuxPath)
	if err != nil {
		return nil, err
	}
	report.Tmux = ParseTmux(tmux)
	report.Tmux.Path, report.Tmux.Found = a.TmuxPath, found

	if a.Runner != nil {
		installed, missing := installer.Partition(a.Runner, a.Tools)
		report.Tools = ToolsReport{Installed: nonNil(installed), Missing: nonNil(missing)}
	}

	logger.Debug().
		Int("aliases", len(report.Zsh.Aliases)).
		Int("bindings", len(report.Tmux.Bindings)).
		Int("missing_tools", len(report.Tools.Missing)).
		Msg("Analysis complete")
	return report, nil
}

func readOptional(path string) (string, bool, error) {
	if path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	return string(data), true, nil
}

// ParseZsh extracts plugins, aliases, exports and functions. Later
// definitions of the same name win, matching shell semantics.
func ParseZsh(content string) ZshReport {
	r := ZshReport{
		Plugins:   []string{},
		Aliases:   map[string]string{},
		Exports:   map[string]string{},
		Functions: map[string]string{},
	}
	if m := zshPlugins.FindStringSubmatch(content); m != nil {
		r.Plugins = nonNil(strings.Fields(m[1]))
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		if m := zshAlias.FindStringSubmatch(line); m != nil {
			r.Aliases[m[1]] = m[2]
		}
		if m := zshExport.FindStringSubmatch(line); m != nil {
			r.Exports[m[1]] = m[2]
		}
	}
	for _, m := range zshFunction.FindAllStringSubmatch(content, -1) {
		r.Functions[m[1]] = whitespaceRE.ReplaceAllString(strings.TrimSpace(m[2]), " ")
	}
	return r
}

// ParseTmux extracts key bindings and set options
func ParseTmux(content string) TmuxReport {
	r := TmuxReport{Bindings: map[string]string{}, Options: map[string]string{}}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := tmuxBind.FindStringSubmatch(line); m != nil {
			r.Bindings[m[1]] = m[2]
		} else if m := tmuxSet.FindStringSubmatch(line); m != nil {
			r.Options[m[1]] = strings.Trim(m[2], `"'`)
		}
	}
	return r
}

// Write encodes the report as "json" or "yaml"
func Write(w io.Writer, report *Report, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown analyze format %q", format).
			WithDetail("valid", []string{"json", "yaml"})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
