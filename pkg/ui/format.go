package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects a renderer
type Format int

const (
	// FormatAuto picks terminal or text output from the stream
	FormatAuto Format = iota
	// FormatTerminal is colored output with status badges
	FormatTerminal
	// FormatText is plain, greppable output
	FormatText
	// FormatJSON is one JSON document per result
	FormatJSON
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
	FormatJSON:     "json",
}

// aliases accepted by ParseFormat besides the canonical names
var formatAliases = map[string]Format{
	"":         FormatAuto,
	"terminal": FormatTerminal,
	"plain":    FormatText,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat accepts a canonical format name or alias, case-insensitively
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if f, ok := formatAliases[s]; ok {
		return f, nil
	}
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
		WithDetail("valid", []string{"auto", "term", "text", "json"})
}

// DetectFormat picks terminal or text output for a stream. NO_COLOR,
// TERM=dumb, redirection and colorless terminals all select text.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return FormatText
	}
	fd := output.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}
	if termenv.NewOutput(output).Profile == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve turns FormatAuto into a concrete format for w. Writers that are
// not files get text.
func Resolve(format Format, w io.Writer) Format {
	if format != FormatAuto {
		return format
	}
	if f, ok := w.(*os.File); ok {
		return DetectFormat(f)
	}
	return FormatText
}
