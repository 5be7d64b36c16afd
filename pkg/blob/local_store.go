// Package blob stores uploaded files on local disk, addressed by an opaque
// storage id.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the contract for blob backends.
type Store interface {
	Put(data []byte, extension string) (storageId string, err error)
	Get(storageId string) ([]byte, error)
	Delete(storageId string) error
	// URL returns the public path a stored blob is served at.
	URL(storageId string) string
}

// LocalStore keeps blobs as flat files under a base directory. Ids are
// generated, never caller supplied, so path traversal is not a concern on
// write; reads still reject separator characters.
type LocalStore struct {
	baseDir   string
	publicDir string
}

func NewLocalStore(baseDir, publicDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create base dir: %w", err)
	}
	return &LocalStore{
		baseDir:   baseDir,
		publicDir: strings.TrimSuffix(publicDir, "/"),
	}, nil
}

func (s *LocalStore) Put(data []byte, extension string) (string, error) {
	extension = strings.TrimPrefix(extension, ".")
	storageId := uuid.New().String()
	if extension != "" {
		storageId = storageId + "." + extension
	}
	path := filepath.Join(s.baseDir, storageId)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", storageId, err)
	}
	return storageId, nil
}

func (s *LocalStore) Get(storageId string) ([]byte, error) {
	if err := s.validateId(storageId); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, storageId))
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", storageId, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(storageId string) error {
	if err := s.validateId(storageId); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, storageId)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: delete %s: %w", storageId, err)
	}
	return nil
}

func (s *LocalStore) URL(storageId string) string {
	return s.publicDir + "/" + storageId
}

func (s *LocalStore) validateId(storageId string) error {
	if storageId == "" || strings.ContainsAny(storageId, `/\`) || strings.Contains(storageId, "..") {
		return fmt.Errorf("blob: invalid storage id %q", storageId)
	}
	return nil
}
