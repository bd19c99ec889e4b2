// Package sqlitestore implements settings.Store on a SQLite database.
// One database file can hold any number of settings domains.
package sqlitestore

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mash/internal/settings"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside a settings directory.
const FileName = "settings.db"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements settings.Store for one domain of a SQLite database.
type Store struct {
	db     *sql.DB
	domain string
	logger *slog.Logger
}

// Open opens (or creates) the database at path, runs pending migrations
// and returns a store bound to domain. Pass ":memory:" as path for a
// private in-memory database.
func Open(path, domain string, logger *slog.Logger) (*Store, error) {
	if err := settings.ValidateDomain(domain); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, settings.Fault("open", domain, "", fmt.Errorf("creating data directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, settings.Fault("open", domain, "", fmt.Errorf("opening database: %w", err))
	}

	// Limit to single connection to avoid "database is locked" errors and
	// so that ":memory:" keeps one database for the store's lifetime.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		// Every committed write must reach disk before the call returns.
		"PRAGMA synchronous = FULL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, settings.Fault("open", domain, "", fmt.Errorf("%s: %w", p, err))
		}
	}

	s := &Store{db: db, domain: domain, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, settings.Fault("open", domain, "", fmt.Errorf("running migrations: %w", err))
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Domain returns the settings domain.
func (s *Store) Domain() string { return s.domain }

// Lookup returns the value for key and whether it was present.
func (s *Store) Lookup(key string) (string, bool, error) {
	if err := settings.ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM entries WHERE domain = ? AND key = ?", s.domain, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, settings.Fault("get", s.domain, key, err)
	}
	return value, true, nil
}

// GetString returns the value for key or defaultValue if absent.
func (s *Store) GetString(key, defaultValue string) (string, error) {
	v, ok, err := s.Lookup(key)
	return settings.OrDefault(v, ok, err, defaultValue)
}

// PutString upserts key=value.
func (s *Store) PutString(key, value string) error {
	if err := settings.ValidateEntry(key, value); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO entries (domain, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(domain, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.domain, key, value)
	if err != nil {
		return settings.Fault("put", s.domain, key, err)
	}
	s.logger.Debug("settings: put", "domain", s.domain, "key", key)
	return nil
}

// Remove deletes key from the domain.
func (s *Store) Remove(key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM entries WHERE domain = ? AND key = ?", s.domain, key); err != nil {
		return settings.Fault("remove", s.domain, key, err)
	}
	return nil
}

// Clear deletes every entry of this store's domain. Other domains in the
// same database are untouched.
func (s *Store) Clear() error {
	res, err := s.db.Exec("DELETE FROM entries WHERE domain = ?", s.domain)
	if err != nil {
		return settings.Fault("clear", s.domain, "", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("settings: cleared domain", "domain", s.domain, "entries", n)
	return nil
}

// Keys returns all keys of the domain in ascending order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM entries WHERE domain = ? ORDER BY key ASC", s.domain)
	if err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, settings.Fault("keys", s.domain, "", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, settings.Fault("keys", s.domain, "", err)
	}
	return keys, nil
}

// All returns every entry of the domain.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM entries WHERE domain = ?", s.domain)
	if err != nil {
		return nil, settings.Fault("get", s.domain, "", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, settings.Fault("get", s.domain, "", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, settings.Fault("get", s.domain, "", err)
	}
	return out, nil
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
// Migrations are idempotent so two processes opening a new database at once
// cannot fail each other.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
		s.logger.Debug("settings: applied migration", "version", version)
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

var (
	_ settings.Store       = (*Store)(nil)
	_ settings.Lister      = (*Store)(nil)
	_ settings.Snapshotter = (*Store)(nil)
)
