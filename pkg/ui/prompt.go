package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/term"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// Choice is the answer to a confirmation that can also ask for an edit.
type Choice int

// Confirmation choices.
const (
	ChoiceNo Choice = iota
	ChoiceYes
	ChoiceEdit
)

var (
	yesAnswers  = []string{"y", "ye", "yes"}
	noAnswers   = []string{"n", "no"}
	editAnswers = []string{"e", "ed", "edi", "edit"}
)

// Prompter asks the user questions on a line-based terminal. Only one
// question is asked at a time.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 when in is not a terminal
	ctx context.Context

	mu sync.Mutex
}

type lineResult struct {
	line string
	err  error
}

// PrompterOption is a functional option for configuring Prompter.
type PrompterOption func(*Prompter)

// WithContext makes every question return ctx.Err() as soon as ctx is done,
// without waiting for the user to press Enter.
func WithContext(ctx context.Context) PrompterOption {
	return func(p *Prompter) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

// NewPrompter creates a prompter reading answers from in and writing
// questions to out.
func NewPrompter(in io.Reader, out io.Writer, opts ...PrompterOption) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: fd, ctx: context.Background()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Prompter) readLine() (string, error) {
	// Once the context is done no further read is started, so an abandoned
	// read never races with a new one.
	if err := p.ctx.Err(); err != nil {
		return "", err
	}

	ch := make(chan lineResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-p.ctx.Done():
		fmt.Fprintln(p.out)
		return "", p.ctx.Err()
	case r := <-ch:
		if r.err != nil && (r.err != io.EOF || r.line == "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// Confirm asks a yes/no question until it gets a valid answer. An empty
// answer picks the default.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	choice, err := p.ask(question, defaultYes, false)
	return choice == ChoiceYes, err
}

// ConfirmOrEdit is Confirm with a third "edit" answer.
func (p *Prompter) ConfirmOrEdit(question string, defaultYes bool) (Choice, error) {
	return p.ask(question, defaultYes, true)
}

func (p *Prompter) ask(question string, defaultYes, withEdit bool) (Choice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	choices := []string{"y", "n"}
	if withEdit {
		choices = []string{"y", "e", "n"}
	}
	if defaultYes {
		choices[0] = "Y"
	} else {
		choices[len(choices)-1] = "N"
	}

	for {
		fmt.Fprintf(p.out, "%s [%s]? ", question, strings.Join(choices, "/"))

		answer, err := p.readLine()
		if err != nil {
			return ChoiceNo, tugerrors.Wrap(err, "failed to read answer")
		}
		answer = strings.ToLower(answer)

		switch {
		case answer == "":
			if defaultYes {
				return ChoiceYes, nil
			}
			return ChoiceNo, nil
		case contains(yesAnswers, answer):
			return ChoiceYes, nil
		case contains(noAnswers, answer):
			return ChoiceNo, nil
		case withEdit && contains(editAnswers, answer):
			return ChoiceEdit, nil
		}
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Input asks for a line of text.
func (p *Prompter) Input(label string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s ", label)
	answer, err := p.readLine()
	if err != nil {
		return "", tugerrors.Wrap(err, "failed to read input")
	}
	return answer, nil
}

// Password asks for a secret without echoing it when input is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s ", label)

	if p.fd < 0 {
		answer, err := p.readLine()
		if err != nil {
			return "", tugerrors.Wrap(err, "failed to read secret")
		}
		return answer, nil
	}

	b, err := p.readPassword()
	fmt.Fprintln(p.out) // Move to next line after password entry
	if err != nil {
		return "", tugerrors.Wrap(err, "failed to read secret")
	}
	return strings.TrimSpace(string(b)), nil
}

// readPassword reads without echo. When the context is cancelled first, the
// terminal state is restored before returning.
func (p *Prompter) readPassword() ([]byte, error) {
	state, err := term.GetState(p.fd)
	if err != nil {
		return nil, err
	}

	ch := make(chan lineResult, 1)
	go func() {
		b, err := term.ReadPassword(p.fd)
		ch <- lineResult{line: string(b), err: err}
	}()

	select {
	case <-p.ctx.Done():
		_ = term.Restore(p.fd, state)
		return nil, p.ctx.Err()
	case r := <-ch:
		return []byte(r.line), r.err
	}
}

// EditText opens initial in $EDITOR and returns the saved text. ok is false
// when the editor exits with an error, which callers treat as a cancel.
func EditText(initial string) (text string, ok bool, err error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	tmp, err := os.CreateTemp("", "tug-*.md")
	if err != nil {
		return "", false, tugerrors.Wrap(err, "failed to create temporary file")
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		tmp.Close()
		return "", false, tugerrors.Wrap(err, "failed to write temporary file")
	}
	if err := tmp.Close(); err != nil {
		return "", false, tugerrors.Wrap(err, "failed to write temporary file")
	}

	args := strings.Fields(editor)
	// #nosec G204 - $EDITOR is chosen by the user running the command
	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, tugerrors.Wrap(err, "failed to read temporary file")
	}
	return string(data), true, nil
}
