package github

import (
	"testing"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

func TestDeviceAuth_MissingClientID(t *testing.T) {
	cfg := OAuthConfig{
		ClientID: "", // Missing client ID
	}

	_, err := DeviceAuth(t.Context(), cfg, nil)
	if err == nil {
		t.Fatal("DeviceAuth with empty client ID should return error")
	}
	if !tugerrors.IsConfigError(err) {
		t.Errorf("DeviceAuth error = %v, want ConfigError", err)
	}
}

func TestDeviceAuth_InvalidHost(t *testing.T) {
	cfg := OAuthConfig{
		ClientID: "test-client-id",
		HostURL:  "://not a url",
	}

	_, err := DeviceAuth(t.Context(), cfg, nil)
	if !tugerrors.IsAuthError(err) {
		t.Errorf("DeviceAuth error = %v, want AuthError", err)
	}
}
