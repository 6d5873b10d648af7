package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// Local implements ObjectStore on top of the local filesystem.
// Keys resolve under root/prefix.
type Local struct {
	root   string
	prefix string
}

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir, prefix string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Local{root: abs, prefix: prefix}, nil
}

func (l *Local) resolve(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(joinKey(l.prefix, key)))
}

func (l *Local) Bucket() string { return l.root }

func (l *Local) Region() string { return "local" }

// EnsureBucket creates the root directory.
func (l *Local) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(l.root, 0o755)
}

// Upload copies path to key, creating parent directories as needed.
func (l *Local) Upload(ctx context.Context, key, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: upload %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("storage: upload %s: %w", path, err)
	}
	defer src.Close()

	full := l.resolve(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("storage: copy %s: %w", key, err)
	}
	return dst.Close()
}

// Exists reports whether the named object exists.
func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(l.resolve(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Delete removes the named object. Missing objects are not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.resolve(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// URL returns a file:// URL for key.
func (l *Local) URL(key string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(l.resolve(key))}).String()
}

var _ ObjectStore = (*Local)(nil)
