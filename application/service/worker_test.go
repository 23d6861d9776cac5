package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/task"
)

type countingHandler struct {
	calls atomic.Int64
	err   error
	panic bool
}

func (h *countingHandler) Execute(_ context.Context, _ map[string]any) error {
	h.calls.Add(1)
	if h.panic {
		panic("handler exploded")
	}
	return h.err
}

func TestWorker_ProcessOne(t *testing.T) {
	broker := &fakeBroker{}
	_, err := broker.Save(context.Background(), task.New(
		task.OperationExtractField,
		task.PriorityNormal,
		task.ExtractFieldPayload("a.jpg", "rec-1", "UHID"),
	))
	require.NoError(t, err)

	handler := &countingHandler{}
	registry := NewRegistry()
	registry.Register(task.OperationExtractField, handler)

	w := NewWorker(broker, registry, testLogger())

	processed, err := w.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, int64(1), handler.calls.Load())

	processed, err = w.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorker_UnknownOperationDeleted(t *testing.T) {
	broker := &fakeBroker{}
	_, err := broker.Save(context.Background(), task.New("unknown.operation", task.PriorityNormal, nil))
	require.NoError(t, err)

	w := NewWorker(broker, NewRegistry(), testLogger())

	processed, err := w.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	count, err := broker.CountPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWorker_FailedTaskNotRetried(t *testing.T) {
	broker := &fakeBroker{}
	_, err := broker.Save(context.Background(), task.New(
		task.OperationExtractField,
		task.PriorityNormal,
		task.ExtractFieldPayload("a.jpg", "rec-1", "UHID"),
	))
	require.NoError(t, err)

	handler := &countingHandler{err: errors.New("vision endpoint down")}
	registry := NewRegistry()
	registry.Register(task.OperationExtractField, handler)

	w := NewWorker(broker, registry, testLogger())

	processed, err := w.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	// The failed task is gone; the pending record is picked up by the
	// dispatcher's next sweep instead.
	count, err := broker.CountPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	broker := &fakeBroker{}
	_, err := broker.Save(context.Background(), task.New(
		task.OperationExtractField,
		task.PriorityNormal,
		task.ExtractFieldPayload("a.jpg", "rec-1", "UHID"),
	))
	require.NoError(t, err)

	handler := &countingHandler{panic: true}
	registry := NewRegistry()
	registry.Register(task.OperationExtractField, handler)

	w := NewWorker(broker, registry, testLogger())

	processed, err := w.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, int64(1), handler.calls.Load())
}

func TestRegistry_Operations(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.Operations())

	registry.Register(task.OperationExtractField, &countingHandler{})

	_, ok := registry.Handler(task.OperationExtractField)
	assert.True(t, ok)
	assert.Len(t, registry.Operations(), 1)
}
