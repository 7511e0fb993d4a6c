// Package display turns command results into format-neutral sections that
// the text and terminal renderers lay out.
package display

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/mcp"
	"github.com/arthur-debert/dotsync/pkg/templates"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Kind tells renderers which accent to draw a label with
type Kind string

const (
	KindMapping Kind = "mapping"
	KindHost    Kind = "host"
	KindTool    Kind = "tool"
	KindPlain   Kind = "plain"
)

// Line is one item with an optional status
type Line struct {
	Kind   Kind
	Label  string
	Status types.Status
	Detail string
	// Extra holds indented lines such as captured command output
	Extra []string
}

// Section is a titled group of lines
type Section struct {
	Title  string
	Lines  []Line
	Footer string
}

// Build converts a known result type. ok is false for anything else.
func Build(result interface{}) (sections []Section, ok bool) {
	switch v := result.(type) {
	case *types.SyncReport:
		return syncSections(v), true
	case []types.HostResult:
		return []Section{hostSection(v)}, true
	case []types.ToolResult:
		return []Section{toolSection(v)}, true
	case []types.HostInstallResult:
		return hostInstallSections(v), true
	case []types.GeneratedFile:
		return []Section{generatedSection(v)}, true
	case []mcp.Server:
		return []Section{serverSection(v)}, true
	case []mcp.LogFile:
		return []Section{logSection(v)}, true
	case []mcp.Match:
		return []Section{matchSection(v)}, true
	case []templates.Template:
		return []Section{templateSection(v)}, true
	default:
		return nil, false
	}
}

func syncSections(r *types.SyncReport) []Section {
	title := "Sync"
	if r.DryRun {
		title = "Sync (dry run)"
	}
	s := Section{Title: title}
	for _, res := range r.Results {
		line := Line{
			Kind:   KindMapping,
			Label:  res.Mapping.DisplayName(),
			Status: res.Status,
			Detail: res.TargetPath,
		}
		if res.BackupPath != "" {
			line.Extra = append(line.Extra, "backup: "+res.BackupPath)
		}
		if res.Error != "" {
			line.Extra = append(line.Extra, res.Error)
		}
		s.Lines = append(s.Lines, line)
	}
	if r.MCP != nil {
		line := Line{Kind: KindMapping, Label: "mcp config", Status: r.MCP.Status, Detail: r.MCP.Target}
		if r.MCP.Replacements > 0 {
			line.Extra = append(line.Extra, fmt.Sprintf("%d home paths rewritten", r.MCP.Replacements))
		}
		if r.MCP.BackupPath != "" {
			line.Extra = append(line.Extra, "backup: "+r.MCP.BackupPath)
		}
		if r.MCP.Error != "" {
			line.Extra = append(line.Extra, r.MCP.Error)
		}
		s.Lines = append(s.Lines, line)
	}
	switch {
	case r.BackupDir != "":
		s.Footer = "Backups saved in " + r.BackupDir
	case !r.DryRun:
		s.Footer = "Nothing needed a backup"
	}
	if n := r.Failed(); n > 0 {
		s.Footer = strings.TrimSpace(fmt.Sprintf("%s\n%d failed", s.Footer, n))
	}
	return []Section{s}
}

func hostSection(results []types.HostResult) Section {
	s := Section{Title: "Remote hosts"}
	for _, res := range results {
		line := Line{Kind: KindHost, Label: res.Host.Name, Status: res.Status, Detail: res.Host.Address()}
		for _, b := range res.Backups {
			line.Extra = append(line.Extra, "backup: "+b)
		}
		if res.Error != "" {
			line.Extra = append(line.Extra, res.Error)
		}
		line.Extra = append(line.Extra, outputLines(res.Output)...)
		s.Lines = append(s.Lines, line)
	}
	if len(results) == 0 {
		s.Footer = "No hosts configured"
	} else if n := types.CountFailedHosts(results); n > 0 {
		s.Footer = fmt.Sprintf("%d of %d hosts failed", n, len(results))
	}
	return s
}

func toolSection(results []types.ToolResult) Section {
	s := Section{Title: "Tools"}
	for _, res := range results {
		line := Line{Kind: KindTool, Label: res.Tool.Name, Status: res.Status}
		switch {
		case res.Binary != "":
			line.Detail = res.Binary
		case res.Command != "":
			line.Detail = res.Command
		case res.Package != "":
			line.Detail = res.Package
		}
		if res.Error != "" {
			line.Extra = append(line.Extra, res.Error)
		}
		if res.Status.IsFailure() {
			line.Extra = append(line.Extra, outputLines(res.Output)...)
		}
		s.Lines = append(s.Lines, line)
	}
	if n := types.CountFailedTools(results); n > 0 {
		s.Footer = fmt.Sprintf("%d of %d tools failed", n, len(results))
	}
	return s
}

func hostInstallSections(results []types.HostInstallResult) []Section {
	if len(results) == 0 {
		return []Section{{Title: "Remote hosts", Footer: "No hosts configured"}}
	}
	sections := make([]Section, 0, len(results))
	for _, res := range results {
		title := "Tools on " + res.Host.Name
		if res.Manager != "" {
			title += " (" + res.Manager + ")"
		}
		if res.Error != "" {
			sections = append(sections, Section{
				Title: title,
				Lines: []Line{{Kind: KindHost, Label: res.Host.Name, Status: res.Status, Detail: res.Host.Address(), Extra: []string{res.Error}}},
			})
			continue
		}
		s := toolSection(res.Tools)
		s.Title = title
		sections = append(sections, s)
	}
	return sections
}

func generatedSection(files []types.GeneratedFile) Section {
	s := Section{Title: "Generated configs"}
	failed := 0
	for _, f := range files {
		line := Line{Kind: KindMapping, Label: f.Name, Status: f.Status, Detail: f.Path}
		if f.BackupPath != "" {
			line.Extra = append(line.Extra, "backup: "+f.BackupPath)
		}
		if f.Error != "" {
			line.Extra = append(line.Extra, f.Error)
		}
		if f.Status.IsFailure() {
			failed++
		}
		s.Lines = append(s.Lines, line)
	}
	if failed > 0 {
		s.Footer = fmt.Sprintf("%d of %d files failed", failed, len(files))
	}
	return s
}

func serverSection(servers []mcp.Server) Section {
	s := Section{Title: "MCP servers"}
	for _, srv := range servers {
		s.Lines = append(s.Lines, Line{
			Kind:   KindPlain,
			Label:  srv.Name,
			Detail: strings.TrimSpace(srv.Command + " " + strings.Join(srv.Args, " ")),
		})
	}
	if len(servers) == 0 {
		s.Footer = "No servers configured"
	}
	return s
}

func logSection(files []mcp.LogFile) Section {
	s := Section{Title: "MCP logs"}
	for _, f := range files {
		s.Lines = append(s.Lines, Line{
			Kind:   KindPlain,
			Label:  f.Path,
			Detail: fmt.Sprintf("%d bytes, %s", f.Size, f.ModTime.Format("2006-01-02 15:04:05")),
		})
	}
	if len(files) == 0 {
		s.Footer = "No log files"
	}
	return s
}

func matchSection(matches []mcp.Match) Section {
	s := Section{}
	for _, m := range matches {
		s.Lines = append(s.Lines, Line{Kind: KindPlain, Label: fmt.Sprintf("%s:%d", m.File, m.Line), Detail: m.Text})
	}
	s.Footer = fmt.Sprintf("%d matches", len(matches))
	return s
}

func templateSection(list []templates.Template) Section {
	s := Section{Title: "Templates"}
	for _, t := range list {
		s.Lines = append(s.Lines, Line{Kind: KindPlain, Label: t.Name, Detail: t.Description, Extra: []string{"writes " + t.File}})
	}
	return s
}

func outputLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
