package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of adaptive colors every style is derived from. Light
// and dark variants are picked by lipgloss from the terminal background.
var (
	HeadingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	TextColor    = lipgloss.AdaptiveColor{Light: "#495057", Dark: "#E9ECEF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#A0A8B0"}

	ToneColors = map[Tone]lipgloss.AdaptiveColor{
		ToneSuccess: {Light: "#28A745", Dark: "#4CDD76"},
		ToneError:   {Light: "#DC3545", Dark: "#FF6B7D"},
		ToneQueue:   {Light: "#FFC107", Dark: "#FFD54F"},
		ToneNeutral: {Light: "#17A2B8", Dark: "#4DD0E1"},
	}

	// one accent per kind of work: mappings, hosts, tools
	LinkColor    = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
	HostColor    = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#A78BFA"}
	PackageColor = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
)
