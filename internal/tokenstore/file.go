package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// storedRecord is the on-disk shape: the logical record plus a
// storage-internal updatedAt stamp that is stripped on load.
type storedRecord struct {
	Record
	UpdatedAt int64 `json:"updatedAt"`
}

// FileStore persists the record as a single JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write cannot leave a truncated document.
func (s *FileStore) Save(_ context.Context, rec *Record) error {
	stored := storedRecord{
		Record:    *rec,
		UpdatedAt: time.Now().UnixMilli(),
	}
	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Backend: "file", Op: "save", Err: err}
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Backend: "file", Op: "load", Err: err}
	}
	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, &StorageError{Backend: "file", Op: "load", Err: fmt.Errorf("corrupt token file: %w", err)}
	}
	return &stored.Record, nil
}

func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Backend: "file", Op: "delete", Err: err}
	}
	return nil
}
