package ci

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoreinstein.com/tug/pkg/config"
)

var vars = Vars{
	RemoteURL:    "git@github.com:acme/widgets.git",
	HostDomain:   "github.com",
	Owner:        "acme",
	Repository:   "widgets",
	Branch:       "feature/x",
	HostPlatform: "github",
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
		want string
	}{
		{name: "nothing", want: ""},
		{name: "circleci", dirs: []string{".circleci"}, want: config.CIPlatformCircleCI},
		{name: "github actions", dirs: []string{".github/workflows"}, want: config.CIPlatformGitHub},
		{name: "github without workflows", dirs: []string{".github"}, want: ""},
		{name: "circleci wins", dirs: []string{".circleci", ".github/workflows"}, want: config.CIPlatformCircleCI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, d := range tt.dirs {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
			}
			assert.Equal(t, tt.want, DetectPlatform(dir))
		})
	}
}

func TestURL_ConfiguredURLWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".circleci"), 0o755))

	cfg := config.CIConfig{
		URL:      "https://ci.example.com/{host_domain}/{owner}/{repository}?b={branch}&r={remote_url}",
		Platform: config.CIPlatformGitHub,
	}

	got, err := URL(cfg, vars, dir)
	require.NoError(t, err)
	assert.Equal(t, "https://ci.example.com/github.com/acme/widgets?b=feature/x&r=git@github.com:acme/widgets.git", got)
}

func TestURL_ConfiguredPlatform(t *testing.T) {
	got, err := URL(config.CIConfig{Platform: config.CIPlatformCircleCI}, vars)
	require.NoError(t, err)
	assert.Equal(t, "https://app.circleci.com/pipelines/github/acme/widgets?branch=feature/x", got)
}

func TestURL_DetectedInLaterDir(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".github", "workflows"), 0o755))

	got, err := URL(config.CIConfig{}, vars, cwd, "", root)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widgets/actions?query=branch=feature/x", got)
}

func TestURL_NotFound(t *testing.T) {
	_, err := URL(config.CIConfig{}, vars, t.TempDir())
	require.ErrorIs(t, err, ErrNoURL)
	assert.Equal(t, "Could not find CI URL.", err.Error())
}

func TestExpand_UnknownPlaceholderKept(t *testing.T) {
	assert.Equal(t, "https://x/{job}/acme", Expand("https://x/{job}/{owner}", vars))
}
