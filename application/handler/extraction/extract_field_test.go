package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/domain/service"
	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/infrastructure/objectstore"
	"github.com/docubrain/docubrain/internal/database"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string]record.Record
}

func newFakeRecordStore(records ...record.Record) *fakeRecordStore {
	f := &fakeRecordStore{records: make(map[string]record.Record)}
	for _, r := range records {
		f.records[r.ID()] = r
	}
	return f
}

func (f *fakeRecordStore) Find(_ context.Context, _ ...record.Option) ([]record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]record.Record, 0, len(f.records))
	for _, r := range f.records {
		result = append(result, r)
	}
	return result, nil
}

func (f *fakeRecordStore) FindOne(_ context.Context, options ...record.Option) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := record.Build(options...)
	for _, cond := range q.Conditions() {
		if cond.Field() == "id" {
			if r, ok := f.records[fmt.Sprint(cond.Value())]; ok {
				return r, nil
			}
		}
	}
	return record.Record{}, fmt.Errorf("%w: record", database.ErrNotFound)
}

func (f *fakeRecordStore) Count(_ context.Context, _ ...record.Option) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeRecordStore) Save(_ context.Context, r record.Record) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[r.ID()] = r
	return r, nil
}

func (f *fakeRecordStore) Delete(_ context.Context, r record.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, r.ID())
	return nil
}

func (f *fakeRecordStore) get(id string) (record.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}

type fakeExtractor struct {
	extraction service.Extraction
	err        error
}

func (f *fakeExtractor) ExtractField(_ context.Context, _ []byte, _ string) (service.Extraction, error) {
	if f.err != nil {
		return service.Extraction{}, f.err
	}
	return f.extraction, nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
}

func seedImage(t *testing.T, store *objectstore.MemoryStore, key string) {
	t.Helper()
	data := []byte("jpeg-bytes")
	require.NoError(t, store.Put(context.Background(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg"))
}

func payloadFor(rec record.Record) map[string]any {
	return task.ExtractFieldPayload(rec.StoragePath(), rec.ID(), "UHID")
}

func TestHandler_ExtractsAndRelocates(t *testing.T) {
	rec := record.New(7, "alice", "scan.jpg")
	records := newFakeRecordStore(rec)
	store := objectstore.NewMemoryStore()
	seedImage(t, store, rec.StoragePath())

	extractor := &fakeExtractor{extraction: service.NewExtractionWithConfidence("ABC 123", -0.1)}
	h := NewHandler(records, store, extractor, -0.5, testLogger()).WithClock(fixedClock())

	require.NoError(t, h.Execute(context.Background(), payloadFor(rec)))

	updated, ok := records.get(rec.ID())
	require.True(t, ok)

	value, extracted := updated.ExtractedValue()
	require.True(t, extracted)
	assert.Equal(t, "ABC123", value)
	assert.Equal(t, "7/ABC123/20250314092653.jpg", updated.StoragePath())

	// Blob moved: new key readable, old key gone.
	_, err := store.Get(context.Background(), updated.StoragePath())
	require.NoError(t, err)
	_, err = store.Get(context.Background(), rec.StoragePath())
	assert.ErrorIs(t, err, service.ErrObjectNotFound)
}

func TestHandler_EmptyExtractionEndsNormally(t *testing.T) {
	rec := record.New(1, "", "scan.jpg")
	records := newFakeRecordStore(rec)
	store := objectstore.NewMemoryStore()
	seedImage(t, store, rec.StoragePath())

	extractor := &fakeExtractor{extraction: service.NewExtraction("   ")}
	h := NewHandler(records, store, extractor, -0.5, testLogger())

	require.NoError(t, h.Execute(context.Background(), payloadFor(rec)))

	// Record untouched, blob in place: the record stays pending for the
	// next dispatch sweep.
	updated, ok := records.get(rec.ID())
	require.True(t, ok)
	assert.True(t, updated.Pending())
	assert.Equal(t, rec.StoragePath(), updated.StoragePath())
}

func TestHandler_LowConfidenceStillUsed(t *testing.T) {
	rec := record.New(1, "", "scan.jpg")
	records := newFakeRecordStore(rec)
	store := objectstore.NewMemoryStore()
	seedImage(t, store, rec.StoragePath())

	extractor := &fakeExtractor{extraction: service.NewExtractionWithConfidence("XYZ9", -2.7)}
	h := NewHandler(records, store, extractor, -0.5, testLogger()).WithClock(fixedClock())

	require.NoError(t, h.Execute(context.Background(), payloadFor(rec)))

	updated, ok := records.get(rec.ID())
	require.True(t, ok)
	value, extracted := updated.ExtractedValue()
	require.True(t, extracted)
	assert.Equal(t, "XYZ9", value)
}

func TestHandler_RecordVanishedEndsNormally(t *testing.T) {
	rec := record.New(1, "", "scan.jpg")
	records := newFakeRecordStore() // record never stored
	store := objectstore.NewMemoryStore()
	seedImage(t, store, rec.StoragePath())

	extractor := &fakeExtractor{extraction: service.NewExtraction("ABC123")}
	h := NewHandler(records, store, extractor, -0.5, testLogger())

	require.NoError(t, h.Execute(context.Background(), payloadFor(rec)))
}

func TestHandler_MissingBlobFails(t *testing.T) {
	rec := record.New(1, "", "gone.jpg")
	records := newFakeRecordStore(rec)
	store := objectstore.NewMemoryStore()

	extractor := &fakeExtractor{extraction: service.NewExtraction("ABC123")}
	h := NewHandler(records, store, extractor, -0.5, testLogger())

	err := h.Execute(context.Background(), payloadFor(rec))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrObjectNotFound)
}

func TestHandler_ExtractorErrorFails(t *testing.T) {
	rec := record.New(1, "", "scan.jpg")
	records := newFakeRecordStore(rec)
	store := objectstore.NewMemoryStore()
	seedImage(t, store, rec.StoragePath())

	extractor := &fakeExtractor{err: errors.New("model overloaded")}
	h := NewHandler(records, store, extractor, -0.5, testLogger())

	err := h.Execute(context.Background(), payloadFor(rec))
	require.Error(t, err)

	// The record is untouched; re-dispatch retries later.
	updated, ok := records.get(rec.ID())
	require.True(t, ok)
	assert.True(t, updated.Pending())
}

func TestHandler_MissingPayloadKeys(t *testing.T) {
	h := NewHandler(newFakeRecordStore(), objectstore.NewMemoryStore(), &fakeExtractor{}, -0.5, testLogger())

	err := h.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), task.PayloadKeyStorageKey)
}
