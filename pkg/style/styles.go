package style

import (
	"github.com/charmbracelet/lipgloss"
)

func toned(t Tone) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ToneColors[t])
}

func accent(c lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

var (
	SubtitleStyle = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	NormalStyle   = lipgloss.NewStyle().Foreground(TextColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	PathStyle     = lipgloss.NewStyle().Foreground(PathColor).Italic(true)
	ErrorStyle    = toned(ToneError).Bold(true)

	MappingStyle = accent(LinkColor)
	HostStyle    = accent(HostColor)
	ToolStyle    = accent(PackageColor)
)

// One-character markers, one per tone
var (
	SuccessIndicator = toned(ToneSuccess).Bold(true).Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	PendingIndicator = MutedStyle.Render("○")
	InfoIndicator    = toned(ToneNeutral).Render("•")
)

// Indent left-pads s by level steps of two cells
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

// Pad right-pads s to width cells, measuring styled text correctly.
func Pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
