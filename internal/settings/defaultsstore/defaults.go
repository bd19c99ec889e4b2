// Package defaultsstore implements settings.Store on the macOS user
// defaults system, driving the `defaults` command line tool. The settings
// domain is the defaults domain (e.g. "com.mash.party.preferences").
package defaultsstore

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strings"

	"mash/internal/settings"
)

// Runner executes the defaults tool with args and returns its exit status
// and output: stdout when the tool succeeds, its diagnostics otherwise. err
// is reserved for failing to run the tool.
type Runner func(args ...string) (out []byte, status int, err error)

// ExecRunner runs the real `defaults` binary.
func ExecRunner(args ...string) ([]byte, int, error) {
	return runCommand("defaults", args...)
}

// runCommand keeps stdout and stderr apart so that warnings printed while
// reading never end up inside a value.
func runCommand(name string, args ...string) ([]byte, int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return nil, -1, err
	}
	return stdout.Bytes(), 0, nil
}

// Store implements settings.Store for one defaults domain.
type Store struct {
	domain string
	run    Runner
	logger *slog.Logger
}

// New returns a store for domain. A nil run uses ExecRunner.
func New(domain string, run Runner, logger *slog.Logger) (*Store, error) {
	if err := settings.ValidateDomain(domain); err != nil {
		return nil, err
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{domain: domain, run: run, logger: logger}, nil
}

func (s *Store) Domain() string { return s.domain }

// Lookup reads key. `defaults read` exits with status 1 when the key or
// the domain does not exist.
func (s *Store) Lookup(key string) (string, bool, error) {
	if err := settings.ValidateKey(key); err != nil {
		return "", false, err
	}
	out, status, err := s.run("read", s.domain, key)
	if err != nil {
		return "", false, settings.Fault("get", s.domain, key, err)
	}
	switch status {
	case 0:
		return strings.TrimSuffix(string(out), "\n"), true, nil
	case 1:
		return "", false, nil
	default:
		return "", false, settings.Fault("get", s.domain, key, statusError(status, out))
	}
}

func (s *Store) GetString(key, defaultValue string) (string, error) {
	v, ok, err := s.Lookup(key)
	return settings.OrDefault(v, ok, err, defaultValue)
}

// PutString writes key as a string value. cfprefsd persists the domain
// before `defaults write` exits.
func (s *Store) PutString(key, value string) error {
	if err := settings.ValidateEntry(key, value); err != nil {
		return err
	}
	if err := s.check(s.run("write", s.domain, key, "-string", value)); err != nil {
		return settings.Fault("put", s.domain, key, err)
	}
	s.logger.Debug("settings: put", "domain", s.domain, "key", key)
	return nil
}

// Remove deletes key; status 1 (key not found) is a no-op.
func (s *Store) Remove(key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	out, status, err := s.run("delete", s.domain, key)
	if err == nil && status == 1 {
		return nil
	}
	if err := s.check(out, status, err); err != nil {
		return settings.Fault("remove", s.domain, key, err)
	}
	return nil
}

// Clear deletes the whole defaults domain.
func (s *Store) Clear() error {
	out, status, err := s.run("delete", s.domain)
	if err == nil && status == 1 {
		return nil
	}
	if err := s.check(out, status, err); err != nil {
		return settings.Fault("clear", s.domain, "", err)
	}
	s.logger.Debug("settings: cleared domain", "domain", s.domain)
	return nil
}

// Keys lists the top-level keys of the domain from `defaults export`.
func (s *Store) Keys() ([]string, error) {
	out, status, err := s.run("export", s.domain, "-")
	if err := s.check(out, status, err); err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	keys, err := plistKeys(out)
	if err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) check(out []byte, status int, err error) error {
	if err != nil {
		return err
	}
	if status != 0 {
		return statusError(status, out)
	}
	return nil
}

func statusError(status int, out []byte) error {
	return fmt.Errorf("defaults exited with status %d: %s", status, strings.TrimSpace(string(out)))
}

// plistKeys returns the keys of the root dictionary of an XML property list.
func plistKeys(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Property lists declare a DOCTYPE; entity expansion is not needed.
	dec.Strict = false

	keys := []string{}
	depth := 0
	inKey := false
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing exported plist: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			// <plist> is depth 1, the root <dict> depth 2, its keys depth 3.
			if depth == 3 && t.Name.Local == "key" {
				inKey = true
				buf.Reset()
			}
		case xml.CharData:
			if inKey {
				buf.Write(t)
			}
		case xml.EndElement:
			if inKey && t.Name.Local == "key" {
				keys = append(keys, buf.String())
				inKey = false
			}
			depth--
		}
	}
}

var (
	_ settings.Store  = (*Store)(nil)
	_ settings.Lister = (*Store)(nil)
)
