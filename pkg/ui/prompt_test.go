package ui

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
		wantPrompt string
	}{
		{name: "empty defaults to yes", input: "\n", defaultYes: true, want: true, wantPrompt: "Continue [Y/n]? "},
		{name: "empty defaults to no", input: "\n", defaultYes: false, want: false, wantPrompt: "Continue [y/N]? "},
		{name: "yes", input: "yes\n", want: true},
		{name: "upper case", input: "Y\n", want: true},
		{name: "no", input: "n\n", defaultYes: true, want: false},
		{name: "retries on garbage", input: "maybe\nye\n", want: true},
		{name: "last line without newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Continue", tt.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantPrompt != "" {
				assert.Equal(t, tt.wantPrompt, out.String())
			}
		})
	}
}

func TestPrompter_ConfirmRetriesPrintQuestionAgain(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("what\nn\n"), &out)

	got, err := p.Confirm("Delete token", false)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 2, strings.Count(out.String(), "Delete token [y/N]? "))
}

func TestPrompter_ConfirmEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Confirm("Continue", true)
	assert.Error(t, err)
}

func TestPrompter_ConfirmOrEdit(t *testing.T) {
	tests := []struct {
		input string
		want  Choice
	}{
		{input: "\n", want: ChoiceYes},
		{input: "e\n", want: ChoiceEdit},
		{input: "edit\n", want: ChoiceEdit},
		{input: "no\n", want: ChoiceNo},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.ConfirmOrEdit("Continue", true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Continue [Y/e/n]? ", out.String())
		})
	}
}

func TestPrompter_ConfirmEditNotOffered(t *testing.T) {
	p := NewPrompter(strings.NewReader("e\ny\n"), &bytes.Buffer{})

	got, err := p.Confirm("Continue", false)
	require.NoError(t, err)
	assert.True(t, got, "'e' is not an answer to a plain confirmation")
}

func TestPrompter_InputAndPassword(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  amy bob \nghp_secret\n"), &out)

	logins, err := p.Input("Reviewers:")
	require.NoError(t, err)
	assert.Equal(t, "amy bob", logins)

	token, err := p.Password("Token:")
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", token)
	assert.Equal(t, "Reviewers: Token: ", out.String())
}

func TestEditText(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'edited\\n' >> \"$1\"\n"), 0o755))
	t.Setenv("EDITOR", script)

	text, ok, err := EditText("Title\n\n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Title\n\nedited\n", text)
}

func TestEditText_EditorFailureIsCancel(t *testing.T) {
	t.Setenv("EDITOR", "false")

	text, ok, err := EditText("Title")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestPrompter_ConfirmReturnsWhenContextIsCancelled(t *testing.T) {
	// Nothing is ever written: the answer would block forever.
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(t.Context())
	p := NewPrompter(r, &bytes.Buffer{}, WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := p.Confirm("Continue", true)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm() still waiting for input after cancellation")
	}
}

func TestPrompter_CancelledContextAnswersNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	// A pending answer must not be taken as the default.
	p := NewPrompter(strings.NewReader("\n"), &bytes.Buffer{}, WithContext(ctx))

	ok, err := p.Confirm("Continue", true)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)

	_, err = p.Input("Reviewers:")
	require.ErrorIs(t, err, context.Canceled)

	_, err = p.Password("Type your access token:")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrompter_WithContextStillReadsAnswers(t *testing.T) {
	p := NewPrompter(strings.NewReader("n\nalice bob\n"), &bytes.Buffer{}, WithContext(t.Context()))

	ok, err := p.Confirm("Continue", true)
	require.NoError(t, err)
	assert.False(t, ok)

	answer, err := p.Input("Reviewers:")
	require.NoError(t, err)
	assert.Equal(t, "alice bob", answer)
}
