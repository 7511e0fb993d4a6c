package style

import (
	"fmt"

	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/pterm/pterm"
)

// Tone groups statuses that share a color treatment.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneQueue   Tone = "queue"
	ToneNeutral Tone = "neutral"
)

// ToneOf maps a result status to the tone it is drawn with.
func ToneOf(status types.Status) Tone {
	switch status {
	case types.StatusLinked, types.StatusBackedUp, types.StatusInstalled, types.StatusSynced,
		types.StatusWritten, types.StatusDone:
		return ToneSuccess
	case types.StatusFailed, types.StatusMissingSource, types.StatusUnavailable:
		return ToneError
	case types.StatusDryRun, types.StatusSkipped:
		return ToneQueue
	default:
		return ToneNeutral
	}
}

// StatusStyle returns the pterm style used for a status badge
func StatusStyle(status types.Status) *pterm.Style {
	switch ToneOf(status) {
	case ToneSuccess:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case ToneError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	case ToneQueue:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Badge renders status as a fixed-width colored label.
func Badge(status types.Status) string {
	return StatusStyle(status).Sprint(fmt.Sprintf(" %-14s ", status))
}

// Indicator returns the one-character marker for a status.
func Indicator(status types.Status) string {
	switch ToneOf(status) {
	case ToneSuccess:
		return SuccessIndicator
	case ToneError:
		return ErrorIndicator
	case ToneQueue:
		return PendingIndicator
	default:
		return InfoIndicator
	}
}
