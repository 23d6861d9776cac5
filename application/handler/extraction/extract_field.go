// Package extraction contains the task handler that runs vision-model
// field extraction for pending records.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/domain/service"
	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/internal/database"
)

// timestampLayout names relocated blobs down to the second.
const timestampLayout = "20060102150405"

// Handler executes extract-field tasks: fetch the blob, run the vision
// model, relocate the blob under the extracted value, and persist the
// result on the record.
type Handler struct {
	records   record.Store
	store     service.ObjectStore
	extractor service.FieldExtractor
	threshold float64
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates an extraction handler.
func NewHandler(
	records record.Store,
	store service.ObjectStore,
	extractor service.FieldExtractor,
	threshold float64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		records:   records,
		store:     store,
		extractor: extractor,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the handler's clock (for testing).
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Execute processes one extraction task. An empty extraction, a missing
// record, or a low-confidence result never fails the task: the first two
// end the task normally with a warning, and low confidence is logged while
// the value is used anyway.
func (h *Handler) Execute(ctx context.Context, payload map[string]any) error {
	storageKey, ok := task.PayloadString(payload, task.PayloadKeyStorageKey)
	if !ok {
		return fmt.Errorf("payload missing %s", task.PayloadKeyStorageKey)
	}
	recordID, ok := task.PayloadString(payload, task.PayloadKeyRecordID)
	if !ok {
		return fmt.Errorf("payload missing %s", task.PayloadKeyRecordID)
	}
	field, ok := task.PayloadString(payload, task.PayloadKeyFieldName)
	if !ok {
		return fmt.Errorf("payload missing %s", task.PayloadKeyFieldName)
	}

	image, err := h.store.Get(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("fetch image %s: %w", storageKey, err)
	}

	extraction, err := h.extractor.ExtractField(ctx, image, field)
	if err != nil {
		return fmt.Errorf("extract %s from %s: %w", field, storageKey, err)
	}
	if extraction.Empty() {
		h.logger.Warn("extraction returned no value",
			slog.String("record_id", recordID),
			slog.String("field", field),
		)
		return nil
	}
	if extraction.LowConfidence(h.threshold) {
		avg, _ := extraction.AvgLogProb()
		h.logger.Warn("low-confidence extraction",
			slog.String("record_id", recordID),
			slog.String("field", field),
			slog.Float64("avg_logprob", avg),
			slog.Float64("threshold", h.threshold),
		)
	}

	// Reload the record: it may have been deleted (or already extracted by
	// a duplicate delivery) since the task was queued.
	rec, err := h.records.FindOne(ctx, record.WithID(recordID))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.logger.Warn("record vanished before extraction completed",
				slog.String("record_id", recordID),
			)
			return nil
		}
		return fmt.Errorf("load record %s: %w", recordID, err)
	}

	value := extraction.Normalized()
	dest := h.destinationKey(rec, value, storageKey)

	if err := service.Move(ctx, h.store, storageKey, dest); err != nil {
		return fmt.Errorf("move %s to %s: %w", storageKey, dest, err)
	}

	if _, err := h.records.Save(ctx, rec.WithExtraction(value, dest)); err != nil {
		return fmt.Errorf("save record %s: %w", recordID, err)
	}

	h.logger.Info("field extracted",
		slog.String("record_id", recordID),
		slog.String("field", field),
		slog.String("value", value),
		slog.String("storage_key", dest),
	)
	return nil
}

// destinationKey builds the final blob location
// {institution_id}/{value}/{timestamp}{ext}.
func (h *Handler) destinationKey(rec record.Record, value, storageKey string) string {
	return fmt.Sprintf("%d/%s/%s%s",
		rec.InstitutionID(),
		value,
		h.now().UTC().Format(timestampLayout),
		path.Ext(storageKey),
	)
}
