package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/infrastructure/persistence"
	"github.com/docubrain/docubrain/internal/testdb"
)

func extractTask(recordID string) task.Task {
	return task.New(
		task.OperationExtractField,
		task.PriorityNormal,
		task.ExtractFieldPayload(recordID+".jpg", recordID, "UHID"),
	)
}

func TestTaskStore_SaveAndDequeue(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)
	ctx := context.Background()

	saved, err := store.Save(ctx, extractTask("rec-1"))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID())

	got, found, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, task.OperationExtractField, got.Operation())

	id, ok := got.String(task.PayloadKeyRecordID)
	require.True(t, ok)
	assert.Equal(t, "rec-1", id)

	// Dequeue does not consume; the task stays until deleted.
	_, found, err = store.Dequeue(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, store.Delete(ctx, got))

	_, found, err = store.Dequeue(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTaskStore_DedupOnSave(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, extractTask("rec-1"))
	require.NoError(t, err)
	_, err = store.Save(ctx, extractTask("rec-1"))
	require.NoError(t, err)

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTaskStore_DequeueOrder(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)
	ctx := context.Background()

	_, err := store.Save(ctx, extractTask("low-priority"))
	require.NoError(t, err)

	critical := task.New(
		task.OperationExtractField,
		task.PriorityCritical,
		task.ExtractFieldPayload("urgent.jpg", "urgent", "UHID"),
	)
	_, err = store.Save(ctx, critical)
	require.NoError(t, err)

	got, found, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, found)

	id, _ := got.String(task.PayloadKeyRecordID)
	assert.Equal(t, "urgent", id)
}

func TestTaskStore_CountPending(t *testing.T) {
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)
	ctx := context.Background()

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.Save(ctx, extractTask("rec-1"))
	require.NoError(t, err)
	_, err = store.Save(ctx, extractTask("rec-2"))
	require.NoError(t, err)

	count, err = store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
