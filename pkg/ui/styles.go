package ui

import (
	"github.com/charmbracelet/lipgloss"

	"thoreinstein.com/tug/pkg/host"
)

var (
	colorSuccess = lipgloss.Color("46")  // green
	colorError   = lipgloss.Color("196") // red
	colorPending = lipgloss.Color("51")  // cyan
	colorWarning = lipgloss.Color("220") // yellow
	colorMuted   = lipgloss.Color("240") // gray
)

// Status symbols.
const (
	SymbolSuccess  = "✔"
	SymbolError    = "✖"
	SymbolPending  = "…"
	SymbolQuestion = "?"
	SymbolWarning  = "⚠"
)

// theme holds the styles bound to one output. A renderer on a non-terminal
// writer (or with NO_COLOR set) drops every color.
type theme struct {
	success lipgloss.Style
	err     lipgloss.Style
	pending lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
	caution lipgloss.Style
	header  lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	return theme{
		success: r.NewStyle().Foreground(colorSuccess),
		err:     r.NewStyle().Foreground(colorError),
		pending: r.NewStyle().Foreground(colorPending),
		warning: r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
		caution: r.NewStyle().Foreground(colorError),
		header:  r.NewStyle().Bold(true),
	}
}

// checkSymbol returns the styled symbol for a CI signal.
func (t theme) checkSymbol(state host.CommitState) string {
	switch state {
	case host.CommitStateSuccess:
		return t.success.Render(SymbolSuccess)
	case host.CommitStateError, host.CommitStateFailure:
		return t.err.Render(SymbolError)
	case host.CommitStatePending:
		return t.pending.Render(SymbolPending)
	default:
		return t.warning.Render(SymbolQuestion)
	}
}

// reviewSymbol returns the styled symbol for a reviewer.
func (t theme) reviewSymbol(state host.ReviewState) string {
	switch state {
	case host.ReviewStateApproved:
		return t.success.Render(SymbolSuccess)
	case host.ReviewStateRejected:
		return t.err.Render(SymbolError)
	case host.ReviewStatePending:
		return t.pending.Render(SymbolPending)
	default:
		return t.warning.Render(SymbolQuestion)
	}
}

// checkStyle colors a whole line in the live view.
func (t theme) checkStyle(state host.CommitState) lipgloss.Style {
	switch state {
	case host.CommitStateSuccess:
		return t.success
	case host.CommitStateError, host.CommitStateFailure:
		return t.err
	case host.CommitStatePending:
		return t.pending
	default:
		return t.muted
	}
}
