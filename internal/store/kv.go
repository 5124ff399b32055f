// Package store persists entity collections as JSON strings in a key-value
// table, the server-side counterpart of browser local storage.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
)

// Entry is one key-value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// KVStore is a string key-value store on GORM.
type KVStore struct {
	db *gorm.DB
}

func NewKVStore(db *gorm.DB) *KVStore {
	return &KVStore{db: db}
}

// Migrate creates the backing table.
func (s *KVStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Entry{})
}

// Get returns the value stored under key, or a not-found AppError.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", domain.ErrNotFound
	}
	var e Entry
	if err := s.db.WithContext(ctx).Where(&Entry{Key: key}).First(&e).Error; err != nil {
		return "", mapError(err)
	}
	return e.Value, nil
}

// Set inserts or overwrites key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return mapError(err)
}

// Delete removes key. Deleting a missing key is a not-found error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return domain.ErrNotFound
	}
	result := s.db.WithContext(ctx).Where(&Entry{Key: key}).Delete(&Entry{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Keys lists the stored keys starting with prefix, in key order.
func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&Entry{}).
		Where(clause.Like{Column: clause.Column{Name: "key"}, Value: prefix + "%"}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Pluck("key", &keys).Error
	if err != nil {
		return nil, mapError(err)
	}
	return keys, nil
}

// withDB returns a store bound to db, typically a transaction.
func (s *KVStore) withDB(db *gorm.DB) *KVStore {
	return &KVStore{db: db}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
