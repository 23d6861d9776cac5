package service

import (
	"context"
	"log/slog"

	"github.com/docubrain/docubrain/domain/record"
)

// RecordListParams configures record listing.
type RecordListParams struct {
	InstitutionID *int
	PendingOnly   bool
	Limit         int
	Offset        int
}

// Records is the read-side facade over stored enrichment records.
type Records struct {
	store  record.Store
	logger *slog.Logger
}

// NewRecords creates a new records service.
func NewRecords(store record.Store, logger *slog.Logger) *Records {
	return &Records{
		store:  store,
		logger: logger,
	}
}

// List returns records matching the given params, newest first.
func (s *Records) List(ctx context.Context, params *RecordListParams) ([]record.Record, error) {
	options := listOptions(params)
	options = append(options, record.NewestFirst())
	if params != nil && params.Limit > 0 {
		options = append(options, record.WithPagination(params.Limit, params.Offset)...)
	}
	return s.store.Find(ctx, options...)
}

// Count returns the number of records matching the given params.
func (s *Records) Count(ctx context.Context, params *RecordListParams) (int64, error) {
	return s.store.Count(ctx, listOptions(params)...)
}

// Get retrieves a record by ID.
func (s *Records) Get(ctx context.Context, id string) (record.Record, error) {
	return s.store.FindOne(ctx, record.WithID(id))
}

func listOptions(params *RecordListParams) []record.Option {
	var options []record.Option
	if params == nil {
		return options
	}
	if params.InstitutionID != nil {
		options = append(options, record.WithInstitutionID(*params.InstitutionID))
	}
	if params.PendingOnly {
		options = append(options, record.Pending())
	}
	return options
}
