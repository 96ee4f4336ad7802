package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidObjectKey = errors.New("invalid object key")

// Store persists uploaded attachments on the local filestore path, laid
// out as <root>/<bucket>/<objectKey>.
type Store struct {
	root string
}

func NewStore(filestorePath string) (*Store, error) {
	info, err := os.Stat(filestorePath)
	if err != nil {
		return nil, fmt.Errorf("filestore path not usable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filestore path is not a directory: %s", filestorePath)
	}
	return &Store{root: filestorePath}, nil
}

// resolve maps an object key to an absolute path, rejecting anything that
// would escape the bucket directory.
func (s *Store) resolve(objectKey string) (string, error) {
	if objectKey == "" || strings.Contains(objectKey, "..") {
		return "", ErrInvalidObjectKey
	}
	full := filepath.Join(s.root, UploadBucket, filepath.FromSlash(objectKey))
	base := filepath.Join(s.root, UploadBucket)
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", ErrInvalidObjectKey
	}
	return full, nil
}

// Save streams the uploaded bytes to disk and returns the stored size.
func (s *Store) Save(objectKey string, src io.Reader) (int64, error) {
	target, err := s.resolve(objectKey)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(target)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return 0, err
	}
	return n, nil
}

func (s *Store) Open(objectKey string) (io.ReadCloser, error) {
	target, err := s.resolve(objectKey)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (s *Store) Exists(objectKey string) bool {
	target, err := s.resolve(objectKey)
	if err != nil {
		return false
	}
	_, err = os.Stat(target)
	return err == nil
}

func (s *Store) Delete(objectKey string) error {
	target, err := s.resolve(objectKey)
	if err != nil {
		return err
	}
	return os.Remove(target)
}
