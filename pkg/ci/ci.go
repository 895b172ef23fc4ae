// Package ci resolves the URL of the CI pipeline running a branch.
package ci

import (
	"os"
	"path/filepath"
	"strings"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// ErrNoURL is returned when no URL is configured and no platform is detected.
var ErrNoURL = tugerrors.New("Could not find CI URL.")

// templates maps a CI platform to its pipeline URL template.
var templates = map[string]string{
	config.CIPlatformCircleCI: "https://app.circleci.com/pipelines/{host_platform}/{owner}/{repository}?branch={branch}",
	config.CIPlatformGitHub:   "https://github.com/{owner}/{repository}/actions?query=branch={branch}",
}

// Vars are the values substituted into a URL template.
type Vars struct {
	RemoteURL    string
	HostDomain   string
	Owner        string
	Repository   string
	Branch       string
	HostPlatform string
}

// Template returns the URL template for platform, or "" if it is unknown.
func Template(platform string) string {
	return templates[platform]
}

// DetectPlatform looks for CI configuration in dir: .circleci first, then
// .github/workflows. It returns "" when neither exists.
func DetectPlatform(dir string) string {
	if exists(filepath.Join(dir, ".circleci")) {
		return config.CIPlatformCircleCI
	}
	if exists(filepath.Join(dir, ".github", "workflows")) {
		return config.CIPlatformGitHub
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ResolveTemplate picks the URL template: ci.url, then the template of
// ci.platform, then the template of the first platform detected in dirs.
func ResolveTemplate(cfg config.CIConfig, dirs ...string) (string, error) {
	if cfg.URL != "" {
		return cfg.URL, nil
	}

	platform := cfg.Platform
	if platform == "" {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if platform = DetectPlatform(dir); platform != "" {
				break
			}
		}
	}

	if tmpl := Template(platform); tmpl != "" {
		return tmpl, nil
	}
	return "", ErrNoURL
}

// Expand substitutes the {placeholders} of tmpl. Unknown placeholders are
// left as is.
func Expand(tmpl string, v Vars) string {
	r := strings.NewReplacer(
		"{remote_url}", v.RemoteURL,
		"{host_domain}", v.HostDomain,
		"{owner}", v.Owner,
		"{repository}", v.Repository,
		"{branch}", v.Branch,
		"{host_platform}", v.HostPlatform,
	)
	return r.Replace(tmpl)
}

// URL resolves and expands the pipeline URL for v.Branch.
func URL(cfg config.CIConfig, v Vars, dirs ...string) (string, error) {
	tmpl, err := ResolveTemplate(cfg, dirs...)
	if err != nil {
		return "", err
	}
	return Expand(tmpl, v), nil
}
