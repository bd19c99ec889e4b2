// Package filesystem implements settings.Store using the local filesystem.
// Each domain is a directory and each key is stored as its own JSON file,
// so a write never rewrites unrelated entries.
package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mash/internal/atomicfile"
	"mash/internal/settings"
)

const entryExt = ".json"

// entry is the on-disk form of one key. The key is stored in the file
// because file names are derived from a hash of the key.
type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store implements settings.Store using one JSON file per key.
type Store struct {
	domain string
	dir    string // absolute path to the domain directory
	logger *slog.Logger
}

// New creates a filesystem store for domain rooted at root. The domain
// directory is created if it doesn't exist.
func New(root, domain string, logger *slog.Logger) (*Store, error) {
	if err := settings.ValidateDomain(domain); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, settings.Fault("open", domain, "", fmt.Errorf("creating domain directory: %w", err))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{domain: domain, dir: dir, logger: logger}, nil
}

// Domain returns the settings domain.
func (s *Store) Domain() string { return s.domain }

// Dir returns the directory holding the domain's entries.
func (s *Store) Dir() string { return s.dir }

// Lookup returns the value for key and whether it was present.
func (s *Store) Lookup(key string) (string, bool, error) {
	if err := settings.ValidateKey(key); err != nil {
		return "", false, err
	}
	e, err := readEntry(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, settings.Fault("get", s.domain, key, err)
	}
	return e.Value, true, nil
}

// GetString returns the value for key or defaultValue if absent.
func (s *Store) GetString(key, defaultValue string) (string, error) {
	v, ok, err := s.Lookup(key)
	return settings.OrDefault(v, ok, err, defaultValue)
}

// PutString stores value for key, replacing any existing file.
func (s *Store) PutString(key, value string) error {
	if err := settings.ValidateEntry(key, value); err != nil {
		return err
	}
	data, err := json.Marshal(entry{Key: key, Value: value})
	if err != nil {
		return settings.Fault("put", s.domain, key, err)
	}
	if err := atomicfile.Write(s.keyPath(key), data, 0644); err != nil {
		return settings.Fault("put", s.domain, key, err)
	}
	s.logger.Debug("settings: put", "domain", s.domain, "key", key)
	return nil
}

// Remove deletes the file for key, if any.
func (s *Store) Remove(key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	if err := atomicfile.Remove(s.keyPath(key)); err != nil {
		return settings.Fault("remove", s.domain, key, err)
	}
	return nil
}

// Clear deletes every entry file in the domain directory. Files that are
// not entries are left alone.
func (s *Store) Clear() error {
	names, err := s.entryFiles()
	if err != nil {
		return settings.Fault("clear", s.domain, "", err)
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return settings.Fault("clear", s.domain, "", err)
		}
	}
	if err := atomicfile.SyncDir(s.dir); err != nil {
		return settings.Fault("clear", s.domain, "", err)
	}
	s.logger.Debug("settings: cleared domain", "domain", s.domain, "entries", len(names))
	return nil
}

// Keys returns all keys in ascending order.
func (s *Store) Keys() ([]string, error) {
	names, err := s.entryFiles()
	if err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		e, err := readEntry(filepath.Join(s.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue // removed concurrently
			}
			return nil, settings.Fault("keys", s.domain, "", err)
		}
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// entryFiles lists entry file names in the domain directory, skipping
// temp files and subdirectories.
func (s *Store) entryFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, entryExt) || atomicfile.IsTemp(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// keyPath returns the filesystem path for a key. Hashing keeps arbitrary
// keys (separators, case, length) safe as file names.
func (s *Store) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+entryExt)
}

func readEntry(path string) (entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, err
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return e, nil
}

var (
	_ settings.Store  = (*Store)(nil)
	_ settings.Lister = (*Store)(nil)
)
