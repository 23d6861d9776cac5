package docubrain

import (
	"log/slog"
	"time"

	domainservice "github.com/docubrain/docubrain/domain/service"
	"github.com/docubrain/docubrain/domain/task"
	"github.com/docubrain/docubrain/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL               string
	logger              *slog.Logger
	store               domainservice.ObjectStore
	storageCfg          *config.StorageConfig
	extractor           domainservice.FieldExtractor
	visionCfg           *config.VisionConfig
	broker              task.Broker
	brokerURL           string
	brokerQueue         string
	dispatch            config.DispatchConfig
	extractField        string
	confidenceThreshold float64
	defaultInstitution  int
	workerCount         int
	workerPollPeriod    time.Duration
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dbURL:               config.DefaultDBURL,
		dispatch:            config.NewDispatchConfig(),
		extractField:        config.DefaultExtractField,
		confidenceThreshold: config.DefaultConfidenceThreshold,
		defaultInstitution:  config.DefaultInstitutionID,
		workerCount:         config.DefaultWorkerCount,
		workerPollPeriod:    config.DefaultWorkerPollPeriod,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets the database URL directly.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithLogger sets the logger used by all services.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithObjectStore sets a custom blob storage backend.
func WithObjectStore(store domainservice.ObjectStore) Option {
	return func(c *clientConfig) {
		c.store = store
	}
}

// WithMinio configures MinIO (or any S3-compatible server) as the blob
// storage backend.
func WithMinio(cfg config.StorageConfig) Option {
	return func(c *clientConfig) {
		c.storageCfg = &cfg
	}
}

// WithExtractor sets a custom field extractor.
func WithExtractor(e domainservice.FieldExtractor) Option {
	return func(c *clientConfig) {
		c.extractor = e
	}
}

// WithOpenAIVision configures an OpenAI-compatible vision provider for
// field extraction.
func WithOpenAIVision(cfg config.VisionConfig) Option {
	return func(c *clientConfig) {
		c.visionCfg = &cfg
	}
}

// WithBroker sets a custom task broker.
func WithBroker(b task.Broker) Option {
	return func(c *clientConfig) {
		c.broker = b
	}
}

// WithBrokerURL selects the task transport by URL scheme
// (redis:// or amqp://). Without one the database-backed queue is used.
func WithBrokerURL(url string) Option {
	return func(c *clientConfig) {
		c.brokerURL = url
	}
}

// WithBrokerQueue overrides the queue name used by message brokers.
func WithBrokerQueue(name string) Option {
	return func(c *clientConfig) {
		c.brokerQueue = name
	}
}

// WithDispatch configures periodic dispatch of pending records.
func WithDispatch(cfg config.DispatchConfig) Option {
	return func(c *clientConfig) {
		c.dispatch = cfg
	}
}

// WithExtractField sets the field name extracted from images.
func WithExtractField(field string) Option {
	return func(c *clientConfig) {
		if field != "" {
			c.extractField = field
		}
	}
}

// WithConfidenceThreshold sets the mean log-probability below which an
// extraction is logged as low confidence.
func WithConfidenceThreshold(t float64) Option {
	return func(c *clientConfig) {
		c.confidenceThreshold = t
	}
}

// WithDefaultInstitution sets the institution used when uploads carry no
// hospital header.
func WithDefaultInstitution(id int) Option {
	return func(c *clientConfig) {
		c.defaultInstitution = id
	}
}

// WithWorkerCount sets the number of task workers.
func WithWorkerCount(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithWorkerPollPeriod sets how often workers poll for new tasks.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.workerPollPeriod = d
		}
	}
}

// FromAppConfig builds the option list matching an environment-derived
// application config.
func FromAppConfig(cfg config.AppConfig) []Option {
	opts := []Option{
		WithDatabaseURL(cfg.DBURL()),
		WithDispatch(cfg.Dispatch()),
		WithExtractField(cfg.ExtractField()),
		WithConfidenceThreshold(cfg.ConfidenceThreshold()),
		WithDefaultInstitution(cfg.DefaultInstitutionID()),
		WithWorkerCount(cfg.WorkerCount()),
		WithWorkerPollPeriod(cfg.WorkerPollPeriod()),
	}
	if cfg.Storage().Endpoint() != "" {
		opts = append(opts, WithMinio(cfg.Storage()))
	}
	if cfg.Vision().IsConfigured() {
		opts = append(opts, WithOpenAIVision(cfg.Vision()))
	}
	if cfg.BrokerURL() != "" {
		opts = append(opts, WithBrokerURL(cfg.BrokerURL()))
	}
	return opts
}
