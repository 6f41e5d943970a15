package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// FileStore keeps one JSON envelope per key in a directory. Writes go
// through a temp file and rename so readers never see partial data.
type FileStore struct {
	dir string
	now func() time.Time
}

type fileEnvelope struct {
	Value     []byte     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: filepath.Clean(dir), now: time.Now}, nil
}

// WithClock replaces the time source, for tests.
func (f *FileStore) WithClock(now func() time.Time) *FileStore {
	f.now = now
	return f
}

// Dir returns the directory holding the entries.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get reads key. A corrupt envelope reads as absent.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, nil
	}

	if env.ExpiresAt != nil && expired(*env.ExpiresAt, f.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return env.Value, true, nil
}

// Set writes a value that never expires.
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return f.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL writes a value that expires after ttl.
func (f *FileStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}

	env := fileEnvelope{Value: value}
	if exp := expiry(f.now(), ttl); !exp.IsZero() {
		env.ExpiresAt = &exp
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
