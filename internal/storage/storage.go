// Package storage publishes survey audio to an object store and reports the
// public URL each uploaded object is reachable at.
//
// Two backends exist: S3Store for Amazon S3 (or any S3-compatible endpoint)
// and Local for dry runs, which copies objects into a directory and returns
// file:// URLs.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a local source file or remote object is missing.
var ErrNotFound = errors.New("storage: not found")

// ObjectStore is the minimal surface the survey workflow needs from a backend.
//
// Keys are forward-slash separated and relative to the store prefix.
type ObjectStore interface {
	// EnsureBucket makes sure the destination container exists.
	EnsureBucket(ctx context.Context) error
	// Upload copies the local file at path to key, replacing any existing object.
	Upload(ctx context.Context, key, path string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL returns the address a survey worker's browser fetches key from.
	URL(key string) string
	Bucket() string
	Region() string
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
