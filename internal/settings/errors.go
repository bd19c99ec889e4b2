package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a key fails validation.
	ErrInvalidKey = errors.New("invalid settings key")

	// ErrInvalidValue is returned when a value cannot be stored as text.
	ErrInvalidValue = errors.New("invalid settings value")

	// ErrInvalidDomain is returned when a domain name fails validation.
	ErrInvalidDomain = errors.New("invalid settings domain")

	// ErrStorage matches every StorageError via errors.Is.
	ErrStorage = errors.New("settings storage fault")
)

// StorageError reports a failure of the underlying persistence layer
// (I/O, permissions, database or host command errors). It is not used for
// missing keys.
type StorageError struct {
	Op     string // "get", "put", "remove", "clear", "keys" or "open"
	Domain string
	Key    string // empty for domain-wide operations
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("settings %s %s[%q]: %v", e.Op, e.Domain, e.Key, e.Err)
	}
	return fmt.Sprintf("settings %s %s: %v", e.Op, e.Domain, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) true for any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Fault wraps err as a StorageError. It returns nil when err is nil.
func Fault(op, domain, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Domain: domain, Key: key, Err: err}
}
