package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docsearch-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. It exists for dev
// and tests; signed URLs are simulated with a random token query parameter.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes data to disk under the storage key.
func (s *Store) Put(ctx context.Context, storageKey string, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid storage key")
	}

	fullPath := filepath.Join(s.baseDir, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	_ = contentType
	return nil
}

// PresignGet returns a pseudo-signed file URL carrying the display filename
// and a per-call token, so two calls for the same key differ.
func (s *Store) PresignGet(ctx context.Context, storageKey string, displayName string, expires time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, clean)); err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}

	q := url.Values{}
	q.Set("filename", displayName)
	q.Set("token", randomToken())
	q.Set("expires", fmt.Sprintf("%d", time.Now().Add(expires).Unix()))
	return s.ObjectURL(storageKey) + "?" + q.Encode(), nil
}

// ObjectURL returns a file URL for the stored object.
func (s *Store) ObjectURL(storageKey string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.baseDir, filepath.Clean(storageKey)))
}

func randomToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ object.ObjectStore = (*Store)(nil)
