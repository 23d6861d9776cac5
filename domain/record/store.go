package record

import "context"

// Store persists enrichment records.
type Store interface {
	Find(ctx context.Context, options ...Option) ([]Record, error)
	FindOne(ctx context.Context, options ...Option) (Record, error)
	Count(ctx context.Context, options ...Option) (int64, error)
	Save(ctx context.Context, r Record) (Record, error)
	Delete(ctx context.Context, r Record) error
}
