// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	sections, ok := display.Build(result)
	if !ok {
		return r.renderValue(result)
	}
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(r.output); err != nil {
				return err
			}
		}
		if err := r.renderSection(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderSection(s display.Section) error {
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(s.Title + ":\n")
	}
	width := 0
	for _, l := range s.Lines {
		if len(l.Label) > width {
			width = len(l.Label)
		}
	}
	for _, l := range s.Lines {
		fields := []string{fmt.Sprintf("%-*s", width, l.Label)}
		if l.Status != "" {
			fields = append(fields, fmt.Sprintf("%-14s", l.Status))
		}
		if l.Detail != "" {
			fields = append(fields, l.Detail)
		}
		b.WriteString("  " + strings.TrimRight(strings.Join(fields, "  "), " ") + "\n")
		for _, extra := range l.Extra {
			b.WriteString("      " + extra + "\n")
		}
	}
	if s.Footer != "" {
		b.WriteString(s.Footer + "\n")
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) renderValue(result interface{}) error {
	var err error
	switch v := result.(type) {
	case string:
		_, err = fmt.Fprintln(r.output, strings.TrimRight(v, "\n"))
	case []string:
		for _, line := range v {
			if _, err = fmt.Fprintln(r.output, line); err != nil {
				return err
			}
		}
	default:
		_, err = fmt.Fprintf(r.output, "%+v\n", result)
	}
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
