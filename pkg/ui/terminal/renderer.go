// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/style"
	"github.com/arthur-debert/dotsync/pkg/ui/display"
	"github.com/charmbracelet/lipgloss"
)

// Renderer draws status badges and accent colors with lipgloss and pterm
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	sections, ok := display.Build(result)
	if !ok {
		switch v := result.(type) {
		case string:
			_, err := fmt.Fprintln(r.output, strings.TrimRight(v, "\n"))
			return err
		case []string:
			_, err := fmt.Fprintln(r.output, strings.Join(v, "\n"))
			return err
		}
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
	for _, s := range sections {
		if _, err := io.WriteString(r.output, r.section(s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) section(s display.Section) string {
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(style.SubtitleStyle.Render(s.Title) + "\n")
	}
	width := 0
	for _, l := range s.Lines {
		if w := lipgloss.Width(l.Label); w > width {
			width = w
		}
	}
	for _, l := range s.Lines {
		label := style.Pad(accent(l.Kind).Render(l.Label), width)
		parts := []string{label}
		if l.Status != "" {
			parts = append(parts, style.Badge(l.Status))
		}
		if l.Detail != "" {
			parts = append(parts, style.PathStyle.Render(l.Detail))
		}
		b.WriteString("  " + strings.Join(parts, " ") + "\n")
		for _, extra := range l.Extra {
			b.WriteString(style.Indent(style.MutedStyle.Render(extra), 3) + "\n")
		}
	}
	if s.Footer != "" {
		b.WriteString(style.MutedStyle.Render(s.Footer) + "\n")
	}
	return b.String()
}

func accent(kind display.Kind) lipgloss.Style {
	switch kind {
	case display.KindMapping:
		return style.MappingStyle
	case display.KindHost:
		return style.HostStyle
	case display.KindTool:
		return style.ToolStyle
	default:
		return style.NormalStyle
	}
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %s\n", style.ErrorIndicator, style.ErrorStyle.Render(err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintf(r.output, "%s %s\n", style.InfoIndicator, msg)
	return err
}
