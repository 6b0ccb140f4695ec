package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testRecord() *Record {
	return &Record{
		AccessToken:   "a1",
		RefreshToken:  "r1",
		ExpiryDate:    1700000000000,
		TokenType:     "Bearer",
		Scope:         "openid email profile",
		IDToken:       "idt",
		SessionExpiry: 1707776000000,
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path)

	rec := testRecord()
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || *loaded != *rec {
		t.Fatalf("loaded %+v, want %+v", loaded, rec)
	}
}

func TestFileStore_SaveWritesUpdatedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path)

	if err := store.Save(context.Background(), testRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["updatedAt"]; !ok {
		t.Fatal("expected updatedAt in persisted document")
	}
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "tokens.json"))

	for i := 0; i < 3; i++ {
		if err := store.Save(context.Background(), testRecord()); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "tokens.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only tokens.json in %s, got %v", dir, names)
	}

	// The swapped-in file still round-trips.
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || *loaded != *testRecord() {
		t.Fatalf("loaded %+v after repeated saves", loaded)
	}
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load absent: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)

	_, err := store.Load(context.Background())
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Backend != "file" || storageErr.Op != "load" {
		t.Fatalf("unexpected error fields: %+v", storageErr)
	}
}

func TestFileStore_DeleteIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path)

	if err := store.Save(context.Background(), testRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again with nothing on disk must not fail.
	if err := store.Delete(context.Background()); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil after delete, got %+v", rec)
	}
}
