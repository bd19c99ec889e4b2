// Package yamlstore implements settings.Store backed by one flat YAML file
// per settings domain.
//
// The file holds a single mapping of string keys to string values. Keys
// are written in alphabetical order, which keeps the file deterministic and
// diff-friendly. Every key and value is written as a double-quoted string,
// so keys such as "<<", "null" or "~" keep their literal meaning.
package yamlstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"mash/internal/atomicfile"
	"mash/internal/settings"

	"gopkg.in/yaml.v3"
)

// Store implements settings.Store using <dir>/<domain>.yaml.
//
// Store keeps no in-memory copy: every read re-loads the file under a
// shared lock, so two stores on the same domain (in this process or
// another) always observe each other's writes.
type Store struct {
	domain string
	path   string
	logger *slog.Logger
}

// New creates a Store for domain under dir, creating dir if needed.
// The domain file itself is created on the first write.
func New(dir, domain string, logger *slog.Logger) (*Store, error) {
	if err := settings.ValidateDomain(domain); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, settings.Fault("open", domain, "", fmt.Errorf("creating settings directory: %w", err))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		domain: domain,
		path:   filepath.Join(dir, domain+".yaml"),
		logger: logger,
	}, nil
}

// Domain returns the settings domain.
func (s *Store) Domain() string { return s.domain }

// Lookup returns the value for key and whether it was present.
func (s *Store) Lookup(key string) (string, bool, error) {
	if err := settings.ValidateKey(key); err != nil {
		return "", false, err
	}
	data, err := s.snapshot()
	if err != nil {
		return "", false, settings.Fault("get", s.domain, key, err)
	}
	v, ok := data[key]
	return v, ok, nil
}

// GetString returns the value for key or defaultValue if absent.
func (s *Store) GetString(key, defaultValue string) (string, error) {
	v, ok, err := s.Lookup(key)
	return settings.OrDefault(v, ok, err, defaultValue)
}

// PutString writes key=value and persists to disk.
func (s *Store) PutString(key, value string) error {
	if err := settings.ValidateEntry(key, value); err != nil {
		return err
	}
	err := s.withLock(func(data map[string]string) bool {
		data[key] = value
		return true
	})
	if err != nil {
		return settings.Fault("put", s.domain, key, err)
	}
	s.logger.Debug("settings: put", "domain", s.domain, "key", key)
	return nil
}

// Remove deletes key and persists to disk.
func (s *Store) Remove(key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	err := s.withLock(func(data map[string]string) bool {
		if _, ok := data[key]; !ok {
			return false
		}
		delete(data, key)
		return true
	})
	if err != nil {
		return settings.Fault("remove", s.domain, key, err)
	}
	return nil
}

// Clear removes every key of the domain. The (now empty) file is kept.
func (s *Store) Clear() error {
	err := s.withLock(func(data map[string]string) bool {
		if len(data) == 0 {
			return false
		}
		for k := range data {
			delete(data, k)
		}
		return true
	})
	if err != nil {
		return settings.Fault("clear", s.domain, "", err)
	}
	s.logger.Debug("settings: cleared domain", "domain", s.domain)
	return nil
}

// Keys returns all keys in ascending order.
func (s *Store) Keys() ([]string, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// All returns a copy of all key-value pairs.
func (s *Store) All() (map[string]string, error) {
	data, err := s.snapshot()
	if err != nil {
		return nil, settings.Fault("get", s.domain, "", err)
	}
	return data, nil
}

// lockPath returns the path to the lock file used for flock-based coordination.
func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// snapshot reads the domain file under a shared lock.
func (s *Store) snapshot() (map[string]string, error) {
	unlock, err := atomicfile.Lock(s.lockPath(), false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.readFromDisk()
}

// withLock acquires an exclusive file lock, re-reads the domain from disk
// (picking up writes from other stores and processes), calls fn to mutate
// the data, then atomically writes it back if fn reports a change.
func (s *Store) withLock(fn func(map[string]string) bool) error {
	unlock, err := atomicfile.Lock(s.lockPath(), true)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := s.readFromDisk()
	if err != nil {
		return err
	}

	if !fn(data) {
		return nil
	}

	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return atomicfile.Write(s.path, raw, 0644)
}

// readFromDisk loads the domain file. A missing or empty file is an
// empty domain.
func (s *Store) readFromDisk() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return data, nil
}

// encode renders data as a YAML mapping of double-quoted strings. An empty
// domain is an empty file.
func encode(data map[string]string) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		root.Content = append(root.Content, strNode(k), strNode(data[k]))
	}
	return yaml.Marshal(root)
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: v,
	}
}

// decode parses a settings file. It walks the node tree rather than
// decoding into a map so that merge keys, anchors and implicit typing never
// apply: every scalar is taken as the literal string it spells.
func decode(raw []byte) (map[string]string, error) {
	data := make(map[string]string)

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	// Whitespace or comments only.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return data, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return data, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: settings file must hold a mapping", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: settings key must be a string", k.Line)
		}
		switch {
		case v.Kind != yaml.ScalarNode:
			return nil, fmt.Errorf("line %d: value for %q must be a string", v.Line, k.Value)
		case v.ShortTag() == "!!null" && v.Style == 0:
			// "key:" with nothing after it, as a hand edit might leave.
			data[k.Value] = ""
		default:
			data[k.Value] = v.Value
		}
	}
	return data, nil
}

// Compile-time checks that Store implements the settings interfaces.
var (
	_ settings.Store       = (*Store)(nil)
	_ settings.Lister      = (*Store)(nil)
	_ settings.Snapshotter = (*Store)(nil)
)
