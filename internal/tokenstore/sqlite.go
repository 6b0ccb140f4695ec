package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// tokenRow is the sqlite row shape. UpdatedAt is storage-internal and never
// leaves this package.
type tokenRow struct {
	Key           string `gorm:"primaryKey;column:key"`
	AccessToken   string
	RefreshToken  string
	ExpiryDate    int64
	TokenType     string
	Scope         string
	IDToken       string `gorm:"column:id_token"`
	SessionExpiry int64
	UpdatedAt     int64
}

func (tokenRow) TableName() string { return "oauth_tokens" }

// SQLiteStore persists the record as a single row keyed by the storage key.
type SQLiteStore struct {
	db  *gorm.DB
	key string
}

// NewSQLiteStore opens (creating if needed) the sqlite database at path and
// migrates the token table. An empty key falls back to DefaultKey.
func NewSQLiteStore(path, key string) (*SQLiteStore, error) {
	if key == "" {
		key = DefaultKey
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "open", Err: err}
	}
	if err := db.AutoMigrate(&tokenRow{}); err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "migrate", Err: err}
	}
	return &SQLiteStore{db: db, key: key}, nil
}

// NewSQLiteStoreWithDB wraps an already-open gorm handle. Used by tests and
// by callers that share one database across components.
func NewSQLiteStoreWithDB(db *gorm.DB, key string) (*SQLiteStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := db.AutoMigrate(&tokenRow{}); err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "migrate", Err: err}
	}
	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	row := tokenRow{
		Key:           s.key,
		AccessToken:   rec.AccessToken,
		RefreshToken:  rec.RefreshToken,
		ExpiryDate:    rec.ExpiryDate,
		TokenType:     rec.TokenType,
		Scope:         rec.Scope,
		IDToken:       rec.IDToken,
		SessionExpiry: rec.SessionExpiry,
		UpdatedAt:     time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return &StorageError{Backend: "sqlite", Op: "save", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Record, error) {
	var row tokenRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", s.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "load", Err: err}
	}
	return &Record{
		AccessToken:   row.AccessToken,
		RefreshToken:  row.RefreshToken,
		ExpiryDate:    row.ExpiryDate,
		TokenType:     row.TokenType,
		Scope:         row.Scope,
		IDToken:       row.IDToken,
		SessionExpiry: row.SessionExpiry,
	}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&tokenRow{}, "key = ?", s.key).Error; err != nil {
		return &StorageError{Backend: "sqlite", Op: "delete", Err: err}
	}
	return nil
}
