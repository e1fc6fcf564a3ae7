// Package storage stores uploaded CV documents in object storage.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/casdoor/oss"
	"github.com/casdoor/oss/filesystem"
	"github.com/casdoor/oss/s3"

	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/nanoid"
	"github.com/jobhive/jobhive/internal/validation/validator"
)

// New creates the object storage backend for the configured provider.
// MinIO is reached through the S3-compatible API with a custom endpoint.
func New(c *config.Storage) (oss.StorageInterface, error) {
	switch c.Provider {
	case "", "filesystem":
		folder := c.Bucket
		if folder == "" {
			folder = "./uploads"
		}
		return filesystem.New(folder), nil
	case "s3", "minio":
		if c.ID == "" || c.Secret == "" || c.Bucket == "" {
			return nil, errors.New("storage: id, secret, and bucket are required")
		}
		return s3.New(&s3.Config{
			AccessID:  c.ID,
			AccessKey: c.Secret,
			Region:    c.Region,
			Bucket:    c.Bucket,
			Endpoint:  c.Endpoint,
			ACL:       "private",
		}), nil
	default:
		return nil, fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
}

// CVStore uploads and serves CV documents.
type CVStore struct {
	backend oss.StorageInterface
}

// NewCVStore wraps a storage backend for CV handling.
func NewCVStore(backend oss.StorageInterface) *CVStore {
	return &CVStore{backend: backend}
}

// Put stores a CV for the given account and returns its storage path.
// Only document file types are accepted.
func (s *CVStore) Put(accountID, filename string, r io.Reader) (string, error) {
	if !validator.IsDocument(filename) {
		return "", errors.New("storage: unsupported CV file type")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	path := fmt.Sprintf("cvs/%s/%s%s", accountID, nanoid.PrimaryKey(), ext)

	if _, err := s.backend.Put(path, r); err != nil {
		return "", fmt.Errorf("storage: upload cv: %w", err)
	}
	return path, nil
}

// URL returns a download URL for a stored CV.
func (s *CVStore) URL(path string) (string, error) {
	u, err := s.backend.GetURL(path)
	if err != nil {
		return "", fmt.Errorf("storage: cv url: %w", err)
	}
	return u, nil
}

// Delete removes a stored CV. Missing objects are not an error.
func (s *CVStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := s.backend.Delete(path); err != nil {
		return fmt.Errorf("storage: delete cv: %w", err)
	}
	return nil
}
