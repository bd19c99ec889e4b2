// Package memstore implements settings.Store in process memory.
//
// Buckets live in a process-wide registry keyed by domain, so two stores
// created for the same domain share their entries. Nothing survives the
// process; the backend exists for tests and throwaway sessions.
package memstore

import (
	"sort"
	"sync"

	"mash/internal/settings"
)

var registry = struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}{buckets: make(map[string]*bucket)}

type bucket struct {
	mu   sync.RWMutex
	data map[string]string
}

// Store implements settings.Store over a shared in-memory bucket.
type Store struct {
	domain string
	b      *bucket
}

// New returns a store bound to domain's in-memory bucket, creating the
// bucket on first use.
func New(domain string) (*Store, error) {
	if err := settings.ValidateDomain(domain); err != nil {
		return nil, err
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	b, ok := registry.buckets[domain]
	if !ok {
		b = &bucket{data: make(map[string]string)}
		registry.buckets[domain] = b
	}
	return &Store{domain: domain, b: b}, nil
}

// Drop discards domain's bucket. Stores already bound to it keep the old
// bucket; new stores start empty.
func Drop(domain string) {
	registry.mu.Lock()
	delete(registry.buckets, domain)
	registry.mu.Unlock()
}

func (s *Store) Domain() string { return s.domain }

func (s *Store) Lookup(key string) (string, bool, error) {
	if err := settings.ValidateKey(key); err != nil {
		return "", false, err
	}
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	v, ok := s.b.data[key]
	return v, ok, nil
}

func (s *Store) GetString(key, defaultValue string) (string, error) {
	v, ok, err := s.Lookup(key)
	return settings.OrDefault(v, ok, err, defaultValue)
}

func (s *Store) PutString(key, value string) error {
	if err := settings.ValidateEntry(key, value); err != nil {
		return err
	}
	s.b.mu.Lock()
	s.b.data[key] = value
	s.b.mu.Unlock()
	return nil
}

func (s *Store) Remove(key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	s.b.mu.Lock()
	delete(s.b.data, key)
	s.b.mu.Unlock()
	return nil
}

func (s *Store) Clear() error {
	s.b.mu.Lock()
	s.b.data = make(map[string]string)
	s.b.mu.Unlock()
	return nil
}

func (s *Store) Keys() ([]string, error) {
	s.b.mu.RLock()
	keys := make([]string, 0, len(s.b.data))
	for k := range s.b.data {
		keys = append(keys, k)
	}
	s.b.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) All() (map[string]string, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	out := make(map[string]string, len(s.b.data))
	for k, v := range s.b.data {
		out[k] = v
	}
	return out, nil
}

var (
	_ settings.Store       = (*Store)(nil)
	_ settings.Lister      = (*Store)(nil)
	_ settings.Snapshotter = (*Store)(nil)
)
