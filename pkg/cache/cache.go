// Package cache persists small pieces of static metadata, such as repository
// ids, in a JSON file shared by every invocation.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// Cache is a read-or-populate key/value store backed by one JSON file.
// It is not safe for concurrent writers.
type Cache struct {
	Path      string                     `json:"-"`
	Entries   map[string]json.RawMessage `json:"entries"`
	UpdatedAt time.Time                  `json:"updated_at"`

	loaded bool
}

// NewCache creates a new cache instance
func NewCache(path string) *Cache {
	return &Cache{
		Path:    path,
		Entries: make(map[string]json.RawMessage),
	}
}

// DefaultPath returns ~/.cache/tug/cache.json, honoring XDG_CACHE_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "tug", "cache.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tug", "cache.json")
	}
	return filepath.Join(home, ".cache", "tug", "cache.json")
}

// Load reads the cache from disk. A missing file is an empty cache.
func (c *Cache) Load() error {
	c.loaded = true

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil // Not an error, just empty
	}
	if err != nil {
		return errors.Wrap(err, "failed to read cache")
	}

	if err := json.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse cache %s", c.Path)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]json.RawMessage)
	}
	return nil
}

// Save writes the cache to disk
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}

	c.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode cache")
	}

	return errors.Wrap(os.WriteFile(c.Path, data, 0600), "failed to write cache")
}

// Get decodes the value stored under key into v. It reports false when the
// key is not set.
func (c *Cache) Get(key string, v any) (bool, error) {
	if !c.loaded {
		if err := c.Load(); err != nil {
			return false, err
		}
	}

	raw, ok := c.Entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// A stale entry shape is treated as a miss.
		delete(c.Entries, key)
		return false, nil
	}
	return true, nil
}

// Set stores v under key and saves the cache.
func (c *Cache) Set(key string, v any) error {
	if !c.loaded {
		if err := c.Load(); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry %s", key)
	}
	c.Entries[key] = raw
	return c.Save()
}

// GetOrSet returns the value cached under key. On a miss it calls compute
// once, stores the result and returns it.
func GetOrSet[T any](c *Cache, key string, compute func() (T, error)) (T, error) {
	var v T
	found, err := c.Get(key, &v)
	if err != nil {
		return v, err
	}
	if found {
		return v, nil
	}

	v, err = compute()
	if err != nil {
		return v, err
	}
	if err := c.Set(key, v); err != nil {
		return v, err
	}
	return v, nil
}
