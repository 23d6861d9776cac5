// Package docubrain provides a backend for document-image ingestion and
// vision-model field extraction.
//
// Uploaded images are stored in an object store and tracked as pending
// records. A periodic dispatcher queues extraction tasks for pending
// records; workers run a generative vision model against each image,
// relocate the blob under the extracted value, and persist the result.
//
// Basic usage:
//
//	client, err := docubrain.New(
//	    docubrain.WithSQLite("docubrain.db"),
//	    docubrain.WithOpenAIVision(visionCfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Start(ctx)
package docubrain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/docubrain/docubrain/application/handler/extraction"
	"github.com/docubrain/docubrain/application/service"
	domainservice "github.com/docubrain/docubrain/domain/service"
	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/infrastructure/broker"
	"github.com/docubrain/docubrain/infrastructure/objectstore"
	"github.com/docubrain/docubrain/infrastructure/persistence"
	"github.com/docubrain/docubrain/infrastructure/vision"
	"github.com/docubrain/docubrain/internal/database"
)

// Client is the main entry point for the docubrain library.
//
// Access resources via struct fields:
//
//	client.Ingest.Accept(ctx, institutionID, user, uploads)
//	client.Records.List(ctx, params)
//	client.Queue.Count(ctx)
type Client struct {
	Records *service.Records
	Queue   *service.Queue
	Ingest  *service.Ingest

	db        database.Database
	store     domainservice.ObjectStore
	extractor domainservice.FieldExtractor
	broker    task.Broker
	registry  *service.Registry

	workers    []*service.Worker
	dispatcher *service.Dispatcher

	logger             *slog.Logger
	defaultInstitution int
	closers            []io.Closer
	closed             atomic.Bool
}

// New creates a new Client with the given options. Call Start to begin
// background dispatch and task processing.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	c := &Client{
		db:                 db,
		logger:             logger,
		defaultInstitution: cfg.defaultInstitution,
	}

	store, err := c.buildObjectStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.store = store

	taskBroker, err := c.buildBroker(ctx, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.broker = taskBroker

	c.extractor = cfg.extractor
	if c.extractor == nil && cfg.visionCfg != nil && cfg.visionCfg.IsConfigured() {
		c.extractor = vision.NewOpenAIExtractor(*cfg.visionCfg)
	}

	recordStore := persistence.NewRecordStore(db)

	c.Records = service.NewRecords(recordStore, logger)
	c.Queue = service.NewQueue(taskBroker, logger)
	c.Ingest = service.NewIngest(recordStore, store, logger)

	c.registry = service.NewRegistry()
	if c.extractor != nil {
		handler := extraction.NewHandler(recordStore, store, c.extractor, cfg.confidenceThreshold, logger)
		c.registry.Register(task.OperationExtractField, handler)

		for i := 0; i < cfg.workerCount; i++ {
			w := service.NewWorker(taskBroker, c.registry, logger).
				WithPollPeriod(cfg.workerPollPeriod)
			c.workers = append(c.workers, w)
		}

		c.dispatcher = service.NewDispatcher(cfg.dispatch, recordStore, c.Queue, logger).
			WithExtractField(cfg.extractField)
	} else {
		logger.Warn("vision provider not configured, extraction disabled")
	}

	return c, nil
}

// Start launches the dispatcher and workers. It is a no-op when no vision
// provider is configured.
func (c *Client) Start(ctx context.Context) {
	for _, w := range c.workers {
		w.Start(ctx)
	}
	if c.dispatcher != nil {
		c.dispatcher.Start(ctx)
	}
}

// Close stops background processing and releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.dispatcher != nil {
		c.dispatcher.Stop()
	}
	for _, w := range c.workers {
		w.Stop()
	}

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// DefaultInstitutionID returns the institution used when uploads carry no
// hospital header.
func (c *Client) DefaultInstitutionID() int {
	return c.defaultInstitution
}

// ObjectStore returns the configured blob storage backend.
func (c *Client) ObjectStore() domainservice.ObjectStore {
	return c.store
}

// ExtractionEnabled reports whether a vision provider is configured.
func (c *Client) ExtractionEnabled() bool {
	return c.extractor != nil
}

func (c *Client) buildObjectStore(ctx context.Context, cfg *clientConfig) (domainservice.ObjectStore, error) {
	if cfg.store != nil {
		return cfg.store, nil
	}
	if cfg.storageCfg != nil && cfg.storageCfg.Endpoint() != "" {
		store, err := objectstore.NewMinioStore(ctx, *cfg.storageCfg)
		if err != nil {
			return nil, fmt.Errorf("connect object store: %w", err)
		}
		return store, nil
	}

	c.logger.Warn("no object store configured, using in-memory storage")
	return objectstore.NewMemoryStore(), nil
}

// buildBroker selects the task transport by broker URL scheme. Without a
// URL the database-backed queue is used.
func (c *Client) buildBroker(ctx context.Context, cfg *clientConfig) (task.Broker, error) {
	if cfg.broker != nil {
		return cfg.broker, nil
	}

	url := cfg.brokerURL
	switch {
	case url == "":
		return persistence.NewTaskStore(c.db), nil

	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		b, err := broker.NewRedisBroker(ctx, url, cfg.brokerQueue)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, b)
		return b, nil

	case strings.HasPrefix(url, "amqp://"), strings.HasPrefix(url, "amqps://"):
		b, err := broker.NewAMQPBroker(url, cfg.brokerQueue)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, b)
		return b, nil

	default:
		return nil, fmt.Errorf("unsupported broker URL %q", url)
	}
}
