package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore is content-addressed storage of fetched page HTML on the
// filesystem. Blob IDs are SHA-256 hex; the first two characters form a
// subdirectory so a single directory never holds every blob.
type BlobStore struct {
	dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create blobs directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Put stores data and returns its content-addressed ID. Storing the same
// content twice returns the existing ID without rewriting.
func (b *BlobStore) Put(data []byte) (string, error) {
	hash := sha256.Sum256(data)
	id := hex.EncodeToString(hash[:])

	path := b.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create blob subdirectory: %w", err)
	}

	// Atomic write via temp file + rename so readers never see a partial
	// blob.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-blob-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("set blob permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename blob: %w", err)
	}

	return id, nil
}

// Get retrieves a blob and verifies its integrity against the ID.
func (b *BlobStore) Get(id string) ([]byte, error) {
	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", id)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	hash := sha256.Sum256(data)
	if got := hex.EncodeToString(hash[:]); got != id {
		return nil, fmt.Errorf("blob integrity check failed: expected %s, got %s", id, got)
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (b *BlobStore) Delete(id string) error {
	if err := os.Remove(b.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (b *BlobStore) path(id string) string {
	if len(id) < 2 {
		return filepath.Join(b.dir, "__invalid__", id)
	}
	return filepath.Join(b.dir, id[:2], id)
}
