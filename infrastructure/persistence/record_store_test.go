package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/infrastructure/persistence"
	"github.com/docubrain/docubrain/internal/database"
	"github.com/docubrain/docubrain/internal/testdb"
)

func TestRecordStore_SaveAndFind(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewRecordStore(db)
	ctx := context.Background()

	rec := record.New(7, "alice", "a.jpg")
	saved, err := store.Save(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), saved.ID())
	assert.False(t, saved.CreatedAt().IsZero())

	found, err := store.FindOne(ctx, record.WithID(rec.ID()))
	require.NoError(t, err)
	assert.Equal(t, 7, found.InstitutionID())
	assert.Equal(t, "alice", found.SubmittedBy())
	assert.True(t, found.Pending())

	byPath, err := store.FindOne(ctx, record.WithStoragePath("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), byPath.ID())
}

func TestRecordStore_FindOneNotFound(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewRecordStore(db)

	_, err := store.FindOne(context.Background(), record.WithID("missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRecordStore_PendingFilterAndOrder(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewRecordStore(db)
	ctx := context.Background()

	now := time.Now()
	first := record.New(1, "", "first.jpg").
		WithTimestamps(now.Add(-3*time.Hour), now.Add(-3*time.Hour))
	second := record.New(1, "", "second.jpg").
		WithTimestamps(now.Add(-2*time.Hour), now.Add(-2*time.Hour))
	third := record.New(1, "", "third.jpg").
		WithTimestamps(now.Add(-time.Hour), now.Add(-time.Hour))
	done := record.New(1, "", "done.jpg").
		WithExtraction("ABC123", "1/ABC123/x.jpg").
		WithTimestamps(now.Add(-4*time.Hour), now)

	for _, r := range []record.Record{third, first, done, second} {
		_, err := store.Save(ctx, r)
		require.NoError(t, err)
	}

	pending, err := store.Find(ctx, record.Pending(), record.OldestFirst())
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first.ID(), pending[0].ID())
	assert.Equal(t, second.ID(), pending[1].ID())
	assert.Equal(t, third.ID(), pending[2].ID())

	// A limited sweep takes exactly the oldest two.
	limited, err := store.Find(ctx, record.Pending(), record.OldestFirst(), record.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, first.ID(), limited[0].ID())
	assert.Equal(t, second.ID(), limited[1].ID())
}

func TestRecordStore_UpdatePersistsExtraction(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewRecordStore(db)
	ctx := context.Background()

	rec := record.New(2, "", "a.jpg")
	saved, err := store.Save(ctx, rec)
	require.NoError(t, err)

	_, err = store.Save(ctx, saved.WithExtraction("XYZ42", "2/XYZ42/20250101000000.jpg"))
	require.NoError(t, err)

	found, err := store.FindOne(ctx, record.WithID(rec.ID()))
	require.NoError(t, err)

	value, extracted := found.ExtractedValue()
	require.True(t, extracted)
	assert.Equal(t, "XYZ42", value)
	assert.Equal(t, "2/XYZ42/20250101000000.jpg", found.StoragePath())

	count, err := store.Count(ctx, record.Pending())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordStore_Delete(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewRecordStore(db)
	ctx := context.Background()

	rec := record.New(1, "", "a.jpg")
	_, err := store.Save(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, rec))

	_, err = store.FindOne(ctx, record.WithID(rec.ID()))
	assert.ErrorIs(t, err, database.ErrNotFound)
}
