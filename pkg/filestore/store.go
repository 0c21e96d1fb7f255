// Package filestore keeps uploaded attachments on local disk. Stored
// names are random so client-supplied names never touch the
// filesystem; the original name lives in the metadata record.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/planlane/planlane/pkg/logutils"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save streams src into a uuid-named file and returns its path.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove deletes the stored file. A file that is already gone is not
// an error: the metadata record is the source of truth.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TryRemove is the best-effort cleanup used when a post-upload
// persistence step fails. An orphaned file is preferable to a dangling
// metadata record, so failures are only logged.
func (s *Store) TryRemove(path string) {
	if err := s.Remove(path); err != nil {
		logutils.Log.Warn("orphaned upload cleanup failed: ", err)
	}
}

// Open opens a stored file for streaming back to the client.
func (s *Store) Open(path string) (*os.File, error) {
	return os.Open(path)
}
