package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoreinstein.com/tug/pkg/host"
)

var collaborators = []host.User{
	{ID: "U_1", Login: "amy", Name: "Amy Pond"},
	{ID: "U_2", Login: "bob", Name: ""},
	{ID: "U_3", Login: "zed", Name: "Zed"},
}

func typedSelector(input string, out *bytes.Buffer) *UserSelector {
	return &UserSelector{
		prompter: NewPrompter(strings.NewReader(input), out),
		printer:  NewPrinter(out),
	}
}

func logins(users []host.User) []string {
	var out []string
	for _, u := range users {
		out = append(out, u.Login)
	}
	return out
}

func TestUserSelector_Typed(t *testing.T) {
	var out bytes.Buffer
	got, err := typedSelector("zed, @amy zed\n", &out).Select(collaborators, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "amy"}, logins(got))
}

func TestUserSelector_TypedUnknownLoginAsksAgain(t *testing.T) {
	var out bytes.Buffer
	got, err := typedSelector("amybob\nbob\n", &out).Select(collaborators, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, logins(got))
	assert.Contains(t, out.String(), "✖ Could not find user 'amybob'. Make sure that you use a space to separate reviewers.")
}

func TestUserSelector_TypedBlankUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	got, err := typedSelector("\n", &out).Select(collaborators, []string{"zed", "ghost"})

	require.NoError(t, err)
	assert.Equal(t, []string{"zed"}, logins(got))
	assert.Contains(t, out.String(), "default: zed ghost")
}

func TestUserSelector_TypedBlankWithoutDefaults(t *testing.T) {
	got, err := typedSelector("\n", &bytes.Buffer{}).Select(collaborators, nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserSelector_NoCollaborators(t *testing.T) {
	got, err := typedSelector("", &bytes.Buffer{}).Select(nil, []string{"amy"})

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserSelector_Fzf(t *testing.T) {
	var fed string
	s := &UserSelector{fzf: func(input []byte) ([]byte, error) {
		fed = string(input)
		return []byte("amy\tAmy Pond\nzed\tZed\n"), nil
	}}

	got, err := s.Select(collaborators, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "zed"}, logins(got))
	assert.Equal(t, "amy\tAmy Pond\nbob\tunnamed\nzed\tZed\n", fed)
}

func TestUserSelector_FzfCancelledUsesDefaults(t *testing.T) {
	s := &UserSelector{fzf: func([]byte) ([]byte, error) {
		return nil, errFzfCancelled
	}}

	got, err := s.Select(collaborators, []string{"bob"})

	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, logins(got))
}
