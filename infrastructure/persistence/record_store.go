package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/internal/database"
)

// RecordStore is a database-backed implementation of record.Store.
type RecordStore struct {
	database.Repository[record.Record, RecordModel]
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(db database.Database) *RecordStore {
	return &RecordStore{
		Repository: database.NewRepository[record.Record, RecordModel](db, RecordMapper{}, "record"),
	}
}

// Save inserts or updates a record, maintaining timestamps.
func (s *RecordStore) Save(ctx context.Context, r record.Record) (record.Record, error) {
	now := time.Now().UTC()
	createdAt, updatedAt := touchTimestamps(r.CreatedAt(), now)
	r = r.WithTimestamps(createdAt, updatedAt)

	model := s.Mapper().ToModel(r)
	if result := s.DB(ctx).Save(&model); result.Error != nil {
		return record.Record{}, fmt.Errorf("save record: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes the given record.
func (s *RecordStore) Delete(ctx context.Context, r record.Record) error {
	return s.DeleteBy(ctx, record.WithID(r.ID()))
}
