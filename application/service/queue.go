// Package service contains the application services that drive the
// upload-extract-persist pipeline.
package service

import (
	"context"
	"log/slog"

	"github.com/docubrain/docubrain/domain/task"
)

// Queue provides the main interface for enqueuing tasks.
type Queue struct {
	broker task.Broker
	logger *slog.Logger
}

// NewQueue creates a new queue service.
func NewQueue(broker task.Broker, logger *slog.Logger) *Queue {
	return &Queue{
		broker: broker,
		logger: logger,
	}
}

// Enqueue adds a task to the queue. Brokers that deduplicate do so on the
// task's dedup key; others accept the duplicate, which the at-least-once
// processing model tolerates.
func (s *Queue) Enqueue(ctx context.Context, t task.Task) error {
	_, err := s.broker.Save(ctx, t)
	if err != nil {
		return err
	}

	s.logger.Debug("task enqueued",
		slog.String("dedup_key", t.DedupKey()),
		slog.String("operation", t.Operation().String()),
	)
	return nil
}

// Count returns the number of queued tasks.
func (s *Queue) Count(ctx context.Context) (int64, error) {
	return s.broker.CountPending(ctx)
}
