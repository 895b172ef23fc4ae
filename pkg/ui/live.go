package ui

import (
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"thoreinstein.com/tug/pkg/host"
)

type snapshotMsg struct {
	status *host.PullRequestStatus
}

// liveModel is the bubbletea model of the polling view.
type liveModel struct {
	status *host.PullRequestStatus
	width  int
	theme  theme
	onQuit func()
}

func (m liveModel) Init() tea.Cmd {
	return nil
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapshotMsg:
		m.status = msg.status
	}

	return m, nil
}

func (m liveModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.header.Render("Waiting for checks..."))
	b.WriteString("\n\n")

	if m.status == nil || len(m.status.Checks) == 0 {
		b.WriteString("No check yet.\n")
	} else {
		for _, c := range m.status.Checks {
			line := m.truncate(formatCheck(symbolFor(c.State), c))
			b.WriteString(m.theme.checkStyle(c.State).Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.muted.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// truncate cuts a line to the terminal width so it never wraps.
func (m liveModel) truncate(line string) string {
	if m.width <= 0 || runewidth.StringWidth(line) <= m.width {
		return line
	}
	return runewidth.Truncate(line, m.width, "…")
}

func symbolFor(state host.CommitState) string {
	switch state {
	case host.CommitStateSuccess:
		return SymbolSuccess
	case host.CommitStateError, host.CommitStateFailure:
		return SymbolError
	case host.CommitStatePending:
		return SymbolPending
	default:
		return SymbolQuestion
	}
}

// LiveRenderer shows status snapshots in a full-screen view until it is
// stopped or the user quits.
type LiveRenderer struct {
	program *tea.Program
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// NewLiveRenderer creates a live view reading keys from in and drawing to
// out. onQuit is called when the user presses q, esc or ctrl+c.
func NewLiveRenderer(in io.Reader, out io.Writer, onQuit func()) *LiveRenderer {
	model := liveModel{
		theme:  newTheme(lipgloss.NewRenderer(out)),
		onQuit: onQuit,
	}

	return &LiveRenderer{
		program: tea.NewProgram(model,
			tea.WithInput(in),
			tea.WithOutput(out),
			tea.WithAltScreen(),
		),
		done: make(chan struct{}),
	}
}

// Start runs the event loop in its own goroutine.
func (r *LiveRenderer) Start() {
	go func() {
		defer close(r.done)
		_, err := r.program.Run()
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}()
}

// Render hands a snapshot to the view. It is safe to call after the user
// quit.
func (r *LiveRenderer) Render(status *host.PullRequestStatus) {
	r.program.Send(snapshotMsg{status: status})
}

// Stop quits the view, restores the terminal and waits for the event loop.
func (r *LiveRenderer) Stop() error {
	r.program.Quit()
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
