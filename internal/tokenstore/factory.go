package tokenstore

import "fmt"

// Open builds the store selected by backend ("file", "sqlite", "memory").
// The selection happens once at startup; call sites only see Store.
func Open(backend, key, filePath, dbPath string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(filePath), nil
	case "sqlite":
		return NewSQLiteStore(dbPath, key)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("tokenstore: unknown backend %q", backend)
	}
}
