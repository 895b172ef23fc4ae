// Package ui renders pull request status and talks to the user: a static
// printer for one-off output, a bubbletea live view for polling, line-based
// prompts and an fzf-backed reviewer picker.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"thoreinstein.com/tug/pkg/host"
)

// Printer writes styled messages to one output.
type Printer struct {
	out   io.Writer
	theme theme
}

// NewPrinter creates a printer for w. Colors are used only when w is a
// terminal that accepts them.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w, theme: newTheme(lipgloss.NewRenderer(w))}
}

// Println writes a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes a formatted plain message.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Success writes a line prefixed with a success symbol.
func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.theme.success.Render(SymbolSuccess), fmt.Sprintf(format, a...))
}

// Error writes a line prefixed with an error symbol.
func (p *Printer) Error(format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.theme.err.Render(SymbolError), fmt.Sprintf(format, a...))
}

// Warning writes a line prefixed with a warning symbol.
func (p *Printer) Warning(format string, a ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.theme.warning.Render(SymbolWarning), fmt.Sprintf(format, a...))
}

// Quote writes lines indented behind a muted bar, for commit lists.
func (p *Printer) Quote(lines []string) {
	bar := p.theme.muted.Render("|")
	for _, l := range lines {
		fmt.Fprintf(p.out, "  %s %s\n", bar, l)
	}
}

// PrintStatus writes the checks and reviews of status. When localSHA is set
// and differs from the status commit, a warning says the status is stale.
func (p *Printer) PrintStatus(status *host.PullRequestStatus, localSHA string) {
	if status == nil {
		status = &host.PullRequestStatus{}
	}

	p.PrintChecks(status)

	if len(status.Reviews) > 0 {
		fmt.Fprintln(p.out, "Reviews:")
		for _, r := range status.Reviews {
			fmt.Fprintf(p.out, "  %s %s\n", p.theme.reviewSymbol(r.State), r.Login)
		}
	} else {
		p.Warning("Found no request for review.")
	}

	if localSHA != "" && status.CommitSHA != localSHA {
		p.Warning("Your branch is ahead of upstream. %s",
			p.theme.caution.Render("The status above does not correspond to your latest local commit."))
	}
}

// PrintChecks writes the checks of status only.
func (p *Printer) PrintChecks(status *host.PullRequestStatus) {
	if status == nil || len(status.Checks) == 0 {
		p.Error("Found no check.")
		return
	}

	fmt.Fprintln(p.out, "Checks:")
	for _, c := range status.Checks {
		fmt.Fprintf(p.out, "  %s\n", p.checkLine(c))
	}
}

func (p *Printer) checkLine(c host.PullRequestCheck) string {
	return formatCheck(p.theme.checkSymbol(c.State), c)
}

func formatCheck(symbol string, c host.PullRequestCheck) string {
	var b strings.Builder
	b.WriteString(symbol)
	b.WriteString(" ")
	b.WriteString(c.Name)
	if c.URL != "" {
		b.WriteString(" — ")
		b.WriteString(c.URL)
	}
	return b.String()
}
