package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docubrain/docubrain/domain/record"
	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/internal/config"
)

// Dispatcher enqueues extraction tasks for pending records on a timer.
// Each sweep takes the oldest pending records up to the batch size and
// queues one task per record. A record already queued may be queued again
// on the next sweep; that duplicate is how failed work gets retried.
type Dispatcher struct {
	records   record.Store
	queue     *Queue
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	field     string
	enabled   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDispatcher creates a new Dispatcher from config and dependencies.
func NewDispatcher(
	cfg config.DispatchConfig,
	records record.Store,
	queue *Queue,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		records:   records,
		queue:     queue,
		logger:    logger,
		interval:  cfg.Interval(),
		batchSize: cfg.BatchSize(),
		field:     config.DefaultExtractField,
		enabled:   cfg.Enabled(),
	}
}

// WithExtractField sets the field name carried in enqueued task payloads.
func (d *Dispatcher) WithExtractField(field string) *Dispatcher {
	if field != "" {
		d.field = field
	}
	return d
}

// Start begins periodic dispatch in a background goroutine.
// If disabled, this is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	if !d.enabled {
		d.logger.Info("dispatcher disabled")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()

	d.logger.Info("dispatcher started",
		slog.Duration("interval", d.interval),
		slog.Int("batch_size", d.batchSize),
	)
}

// Stop cancels the background goroutine and waits for it to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context) {
	// Dispatch immediately on startup
	d.Dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Dispatch(ctx)
		}
	}
}

// Dispatch runs one sweep: find the oldest pending records and enqueue an
// extraction task for each. Errors are logged, never fatal; the next tick
// tries again.
func (d *Dispatcher) Dispatch(ctx context.Context) {
	pending, err := d.records.Find(ctx,
		record.Pending(),
		record.OldestFirst(),
		record.WithLimit(d.batchSize),
	)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Error("dispatch failed to find pending records",
			slog.String("error", err.Error()),
		)
		return
	}
	if len(pending) == 0 {
		return
	}

	enqueued := 0
	for _, rec := range pending {
		t := task.New(
			task.OperationExtractField,
			task.PriorityNormal,
			task.ExtractFieldPayload(rec.StoragePath(), rec.ID(), d.field),
		)
		if err := d.queue.Enqueue(ctx, t); err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Warn("dispatch failed to enqueue",
				slog.String("record_id", rec.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		enqueued++
	}

	d.logger.Debug("dispatch enqueued",
		slog.Int("pending", len(pending)),
		slog.Int("enqueued", enqueued),
	)
}
