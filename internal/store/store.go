// Package store provides the key-value persistence used for the fingerprint
// index (no expiry) and the scan payload (TTL-bounded).
package store

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// OptionStore is an unlimited-lifetime key-value store.
type OptionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TTLStore is a key-value store whose entries expire. Expired entries read
// as absent.
type TTLStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store is implemented by every backend in this package.
type Store interface {
	OptionStore
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,200}$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}

// expiry returns the absolute expiry for ttl, or the zero time for none.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

// Open creates the named backend. path is a directory for the file backend
// and a database file for sqlite; the memory backend ignores it.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
