package store

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/pkg"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// KeyPrefix namespaces every persisted collection.
const KeyPrefix = "myoffice:"

// Key returns the storage key of entity's collection.
func Key(entity string) string {
	return KeyPrefix + entity
}

// CollectionStore keeps each entity collection as one JSON array value.
// It implements domain.RecordStore.
type CollectionStore struct {
	db *gorm.DB
	kv *KVStore
}

func NewCollectionStore(db *gorm.DB) *CollectionStore {
	return &CollectionStore{db: db, kv: NewKVStore(db)}
}

// Migrate creates the backing table.
func (s *CollectionStore) Migrate(ctx context.Context) error {
	return s.kv.Migrate(ctx)
}

// Load returns the stored collection. A collection never saved is empty.
func (s *CollectionStore) Load(ctx context.Context, entity string) ([]query.Record, error) {
	return load(ctx, s.kv, entity)
}

// Save replaces the stored collection.
func (s *CollectionStore) Save(ctx context.Context, entity string, records []query.Record) error {
	return save(ctx, s.kv, entity, records)
}

// Update loads the collection, applies fn and saves the result in a single
// transaction. An error from fn aborts without writing.
func (s *CollectionStore) Update(ctx context.Context, entity string, fn func([]query.Record) ([]query.Record, error)) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		kv := s.kv.withDB(tx)
		records, err := load(ctx, kv, entity)
		if err != nil {
			return err
		}
		updated, err := fn(records)
		if err != nil {
			return err
		}
		return save(ctx, kv, entity, updated)
	})
}

// Entities lists the entity names whose stored collection is not empty.
func (s *CollectionStore) Entities(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, KeyPrefix))
	}
	return names, nil
}

func load(ctx context.Context, kv *KVStore, entity string) ([]query.Record, error) {
	raw, err := kv.Get(ctx, Key(entity))
	if domain.IsNotFound(err) {
		return []query.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	records, err := query.DecodeRecords([]byte(raw))
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "corrupt "+entity+" collection", err)
	}
	return records, nil
}

// save deletes the key of an empty collection, so Entities only lists
// collections holding records.
func save(ctx context.Context, kv *KVStore, entity string, records []query.Record) error {
	if len(records) == 0 {
		if err := kv.Delete(ctx, Key(entity)); err != nil && !domain.IsNotFound(err) {
			return err
		}
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "encode "+entity+" collection", err)
	}
	return kv.Set(ctx, Key(entity), string(data))
}
