package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/host"
)

// errFzfCancelled is returned by fzf runners when the user cancels.
var errFzfCancelled = errors.New("selection cancelled")

// fzfRunner feeds input to fzf and returns its stdout.
type fzfRunner func(input []byte) ([]byte, error)

// UserSelector picks reviewers among collaborators, with fzf when it is
// installed and with typed logins otherwise.
type UserSelector struct {
	prompter *Prompter
	printer  *Printer
	fzf      fzfRunner
}

// NewUserSelector creates a selector that falls back to prompter when fzf
// is not in PATH.
func NewUserSelector(prompter *Prompter, printer *Printer) *UserSelector {
	s := &UserSelector{prompter: prompter, printer: printer}
	if path, err := exec.LookPath("fzf"); err == nil {
		s.fzf = func(input []byte) ([]byte, error) {
			return runFzf(path, input)
		}
	}
	return s
}

// Select returns the chosen users. defaults are the logins used when the
// user gives no answer; unknown defaults are ignored.
func (s *UserSelector) Select(users []host.User, defaults []string) ([]host.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	byLogin := make(map[string]host.User, len(users))
	for _, u := range users {
		byLogin[u.Login] = u
	}

	if s.fzf != nil {
		return s.selectWithFzf(users, byLogin, defaults)
	}
	return s.selectTyped(byLogin, defaults)
}

func (s *UserSelector) selectWithFzf(users []host.User, byLogin map[string]host.User, defaults []string) ([]host.User, error) {
	var input bytes.Buffer
	for _, u := range users {
		// Format: login <tab> name
		fmt.Fprintf(&input, "%s\t%s\n", u.Login, displayName(u))
	}

	output, err := s.fzf(input.Bytes())
	if errors.Is(err, errFzfCancelled) {
		return knownUsers(byLogin, defaults), nil
	}
	if err != nil {
		return nil, err
	}

	var selected []host.User
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		login, _, _ := strings.Cut(line, "\t")
		if u, ok := byLogin[strings.TrimSpace(login)]; ok {
			selected = append(selected, u)
		}
	}
	return selected, nil
}

func (s *UserSelector) selectTyped(byLogin map[string]host.User, defaults []string) ([]host.User, error) {
	label := "Reviewers (space-separated logins, leave blank if none):"
	if len(defaults) > 0 {
		label = fmt.Sprintf("Reviewers (space-separated logins, default: %s):", strings.Join(defaults, " "))
	}

	for {
		answer, err := s.prompter.Input(label)
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return knownUsers(byLogin, defaults), nil
		}

		selected, missing := lookupLogins(byLogin, strings.FieldsFunc(answer, isLoginSeparator))
		if missing == "" {
			return selected, nil
		}
		s.printer.Error("Could not find user '%s'. Make sure that you use a space to separate reviewers.", missing)
	}
}

func isLoginSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '\t'
}

// lookupLogins resolves logins in order, dropping duplicates. missing is the
// first unknown login.
func lookupLogins(byLogin map[string]host.User, logins []string) (selected []host.User, missing string) {
	seen := make(map[string]bool, len(logins))
	for _, login := range logins {
		login = strings.TrimPrefix(login, "@")
		u, ok := byLogin[login]
		if !ok {
			return nil, login
		}
		if !seen[login] {
			seen[login] = true
			selected = append(selected, u)
		}
	}
	return selected, ""
}

func knownUsers(byLogin map[string]host.User, logins []string) []host.User {
	var users []host.User
	for _, login := range logins {
		if u, ok := byLogin[login]; ok {
			users = append(users, u)
		}
	}
	return users
}

func displayName(u host.User) string {
	if u.Name == "" {
		return "unnamed"
	}
	return u.Name
}

func runFzf(fzfPath string, input []byte) ([]byte, error) {
	// #nosec G204 - fzf binary is looked up in PATH, no user-controlled arguments are passed directly
	cmd := exec.Command(fzfPath,
		"--multi",
		"--height=40%",
		"--layout=reverse",
		"--delimiter=\t",
		"--with-nth=1,2",
		"--prompt=Reviewers> ",
		"--header=tab to select, enter to validate, esc for none",
	)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stderr = os.Stderr // fzf uses stderr for UI rendering
	var output bytes.Buffer
	cmd.Stdout = &output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// 1: no match, 130: ESC, Ctrl-C or Ctrl-G
			if exitErr.ExitCode() == 130 || exitErr.ExitCode() == 1 {
				return nil, errFzfCancelled
			}
		}
		return nil, tugerrors.Wrap(err, "fzf failed")
	}

	return output.Bytes(), nil
}
