// Package storage provides the profile-picture object store. The contract
// mirrors a hosted bucket: one object per user, keyed by uid, overwritten
// on every change; the previous object is removed best-effort first.
//
// DiskStore is the local-filesystem implementation, served statically by
// the HTTP layer under the configured public base path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AvatarStore is the narrow object-store contract used by the account service.
type AvatarStore interface {
	// Save writes (or overwrites) the avatar object for uid and returns its
	// public URL.
	Save(ctx context.Context, uid string, data []byte) (string, error)
	// Delete removes the avatar object for uid. Deleting a missing object
	// is not an error.
	Delete(ctx context.Context, uid string) error
}

// DiskStore stores one avatar file per uid under Dir and exposes it under
// BaseURL (e.g. "/avatars").
type DiskStore struct {
	Dir     string
	BaseURL string
}

// NewDiskStore ensures the backing directory exists and returns the store.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("avatar dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// objectPath is the single on-disk location for a user's avatar.
func (s *DiskStore) objectPath(uid string) string {
	// uid is a server-generated UUID; Base guards against path separators anyway.
	return filepath.Join(s.Dir, filepath.Base(uid))
}

// Save writes the avatar bytes atomically (temp file + rename) and returns
// the public URL. A cache-busting query param is appended because the path
// is stable across overwrites.
func (s *DiskStore) Save(_ context.Context, uid string, data []byte) (string, error) {
	dst := s.objectPath(uid)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return fmt.Sprintf("%s/%s?v=%d", s.BaseURL, filepath.Base(uid), time.Now().Unix()), nil
}

// Delete removes the user's avatar object if present.
func (s *DiskStore) Delete(_ context.Context, uid string) error {
	err := os.Remove(s.objectPath(uid))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
