// Package media stores uploaded images and videos behind a small
// key/value interface with filesystem and S3 backends.
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("media not found")

// Store persists uploaded files by key.
type Store interface {
	// Put stores r under key, replacing any previous object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Open returns the stored object; ErrNotFound if missing.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey returns a unique storage key for an uploaded filename,
// "<uuid>_<basename>".
func NewKey(filename string) string {
	return uuid.NewString() + "_" + cleanName(filename)
}

// cleanName keeps the base name and replaces characters that are awkward
// in URLs and object keys.
func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}

// URL is the public path under which key is served.
func URL(key string) string {
	return "/uploads/" + key
}

// KeyFromURL reverses URL; ok is false for URLs not served from uploads.
func KeyFromURL(u string) (string, bool) {
	key, ok := strings.CutPrefix(u, "/uploads/")
	if !ok || key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

// validKey rejects keys that could escape the store.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, "/\\")
}
