package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one row of the durable key-value table
type kvEntry struct {
	Scope     string `gorm:"primaryKey;type:varchar(255)"`
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv"
}

// SQLiteStore persists the credential pair in a local SQLite file. Meant for
// headless machines without a keychain (CI runners, containers).
type SQLiteStore struct {
	db    *gorm.DB
	scope string
}

// OpenSQLiteStore opens (creating if needed) the SQLite file at path
func OpenSQLiteStore(path, scope string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credential database: %w", err)
	}

	return &SQLiteStore{db: db, scope: scope}, nil
}

// Save upserts both rows in one transaction
func (s *SQLiteStore) Save(creds Credentials) error {
	if !creds.Complete() {
		return ErrIncompleteCredentials
	}

	entries := []kvEntry{
		{Scope: s.scope, Name: AccessTokenKey, Value: creds.AccessToken},
		{Scope: s.scope, Name: RefreshTokenKey, Value: creds.RefreshToken},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Load reads both rows. A half-present pair counts as absent.
func (s *SQLiteStore) Load() (Credentials, error) {
	var entries []kvEntry
	err := s.db.
		Where("scope = ? AND name IN ?", s.scope, []string{AccessTokenKey, RefreshTokenKey}).
		Find(&entries).Error
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	var creds Credentials
	for _, e := range entries {
		switch e.Name {
		case AccessTokenKey:
			creds.AccessToken = e.Value
		case RefreshTokenKey:
			creds.RefreshToken = e.Value
		}
	}

	if !creds.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

func (s *SQLiteStore) AccessToken() (string, error) {
	return accessToken(s)
}

// Clear deletes both rows
func (s *SQLiteStore) Clear() error {
	err := s.db.
		Where("scope = ? AND name IN ?", s.scope, []string{AccessTokenKey, RefreshTokenKey}).
		Delete(&kvEntry{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
