package github

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
)

const (
	// KeyringService is the keychain service name for tug tokens.
	KeyringService = "tug"

	// TokenStoreDir is the directory, under the config directory, for token files.
	TokenStoreDir = "auth" //nolint:gosec // Not a credential, just a directory name
)

// TokenStore stores one access token per Git host domain.
type TokenStore interface {
	// Get returns the token for domain, or nil if there is none.
	Get(domain string) (*oauth2.Token, error)
	Set(domain string, token *oauth2.Token) error
	// Delete removes the token for domain. Deleting a missing token is not an error.
	Delete(domain string) error
}

// storedToken wraps oauth2.Token with JSON serialization.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (s *storedToken) toOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
	}
}

func fromOAuth2Token(t *oauth2.Token) *storedToken {
	return &storedToken{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

// NewTokenStore creates a token store, preferring the OS keychain when
// available.
func NewTokenStore() TokenStore {
	// Probe the keyring with a throwaway entry.
	testService := KeyringService + "-test"
	if err := keyring.Set(testService, "test", "test"); err == nil {
		_ = keyring.Delete(testService, "test")
		return &KeychainTokenStore{service: KeyringService}
	}

	return &FileTokenStore{dir: tokenStoreDir()}
}

// KeychainTokenStore uses macOS keychain / Linux secret service / Windows
// credential manager, with the host domain as account.
type KeychainTokenStore struct {
	service string
}

// Get retrieves the token for domain from the keychain.
func (k *KeychainTokenStore) Get(domain string) (*oauth2.Token, error) {
	data, err := keyring.Get(k.service, domain)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, tugerrors.NewAuthErrorWithCause(domain, "failed to read from keychain", err)
	}
	return decodeToken(domain, []byte(data))
}

// Set stores the token for domain in the keychain.
func (k *KeychainTokenStore) Set(domain string, token *oauth2.Token) error {
	data, err := json.Marshal(fromOAuth2Token(token))
	if err != nil {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to serialize token", err)
	}

	if err := keyring.Set(k.service, domain, string(data)); err != nil {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to save to keychain", err)
	}
	return nil
}

// Delete removes the token for domain from the keychain.
func (k *KeychainTokenStore) Delete(domain string) error {
	err := keyring.Delete(k.service, domain)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to delete from keychain", err)
	}
	return nil
}

// FileTokenStore stores one token file per domain (fallback for headless
// systems).
type FileTokenStore struct {
	dir string
}

func (f *FileTokenStore) path(domain string) string {
	// Domains never contain path separators, but ports can carry a colon.
	name := strings.NewReplacer("/", "_", ":", "_").Replace(domain)
	return filepath.Join(f.dir, name+".json")
}

// Get retrieves the token for domain from its file.
func (f *FileTokenStore) Get(domain string) (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, tugerrors.NewAuthErrorWithCause(domain, "failed to read token file", err)
	}
	return decodeToken(domain, data)
}

// Set stores the token in a file with restrictive permissions.
func (f *FileTokenStore) Set(domain string, token *oauth2.Token) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to create token directory", err)
	}

	data, err := json.Marshal(fromOAuth2Token(token))
	if err != nil {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to serialize token", err)
	}

	// Write with restrictive permissions (owner read/write only)
	if err := os.WriteFile(f.path(domain), data, 0600); err != nil {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to write token file", err)
	}
	return nil
}

// Delete removes the token file for domain.
func (f *FileTokenStore) Delete(domain string) error {
	err := os.Remove(f.path(domain))
	if err != nil && !os.IsNotExist(err) {
		return tugerrors.NewAuthErrorWithCause(domain, "failed to remove token file", err)
	}
	return nil
}

func decodeToken(domain string, data []byte) (*oauth2.Token, error) {
	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, tugerrors.NewAuthErrorWithCause(domain, "failed to parse stored token", err)
	}
	if stored.AccessToken == "" {
		return nil, nil
	}
	return stored.toOAuth2Token(), nil
}

func tokenStoreDir() string {
	dir, err := config.Dir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, TokenStoreDir)
}
