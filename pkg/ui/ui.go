// Package ui renders command results as rich terminal output, plain text
// or JSON.
package ui

import (
	"io"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/ui/json"
	"github.com/arthur-debert/dotsync/pkg/ui/terminal"
	"github.com/arthur-debert/dotsync/pkg/ui/text"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	RenderResult(result interface{}) error
	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format, resolving auto against output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
