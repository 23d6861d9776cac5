package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8000
	DefaultDBURL               = "sqlite:///docubrain.db"
	DefaultLogLevel            = "INFO"
	DefaultExtractField        = "UHID"
	DefaultConfidenceThreshold = -0.5
	DefaultInstitutionID       = 1
	DefaultWorkerCount         = 1
	DefaultWorkerPollPeriod    = time.Second
	DefaultDispatchInterval    = 30 * time.Second
	DefaultDispatchBatchSize   = 10
	DefaultVisionModel         = "gpt-4o"
	DefaultVisionTimeout       = 60 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

func parseLogFormat(s string) LogFormat {
	if strings.EqualFold(s, string(LogFormatJSON)) {
		return LogFormatJSON
	}
	return LogFormatPretty
}

// StorageConfig configures the object store connection.
type StorageConfig struct {
	endpoint  string
	accessKey string
	secretKey string
	bucket    string
	useSSL    bool
}

// NewStorageConfig creates a StorageConfig.
func NewStorageConfig(endpoint, accessKey, secretKey, bucket string, useSSL bool) StorageConfig {
	return StorageConfig{
		endpoint:  endpoint,
		accessKey: accessKey,
		secretKey: secretKey,
		bucket:    bucket,
		useSSL:    useSSL,
	}
}

// Endpoint returns the object store host:port.
func (c StorageConfig) Endpoint() string { return c.endpoint }

// AccessKey returns the access key.
func (c StorageConfig) AccessKey() string { return c.accessKey }

// SecretKey returns the secret key.
func (c StorageConfig) SecretKey() string { return c.secretKey }

// Bucket returns the upload bucket name.
func (c StorageConfig) Bucket() string { return c.bucket }

// UseSSL reports whether TLS is enabled.
func (c StorageConfig) UseSSL() bool { return c.useSSL }

// VisionConfig configures the generative-vision endpoint.
type VisionConfig struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

// NewVisionConfig creates a VisionConfig.
func NewVisionConfig(baseURL, apiKey, model string, timeout time.Duration) VisionConfig {
	if model == "" {
		model = DefaultVisionModel
	}
	if timeout <= 0 {
		timeout = DefaultVisionTimeout
	}
	return VisionConfig{baseURL: baseURL, apiKey: apiKey, model: model, timeout: timeout}
}

// BaseURL returns the endpoint base URL (empty uses the provider default).
func (c VisionConfig) BaseURL() string { return c.baseURL }

// APIKey returns the API key.
func (c VisionConfig) APIKey() string { return c.apiKey }

// Model returns the vision model identifier.
func (c VisionConfig) Model() string { return c.model }

// Timeout returns the request timeout.
func (c VisionConfig) Timeout() time.Duration { return c.timeout }

// IsConfigured reports whether the endpoint can be used.
func (c VisionConfig) IsConfigured() bool { return c.apiKey != "" }

// DispatchConfig configures the periodic dispatcher.
type DispatchConfig struct {
	enabled   bool
	interval  time.Duration
	batchSize int
}

// NewDispatchConfig creates a DispatchConfig with defaults.
func NewDispatchConfig() DispatchConfig {
	return DispatchConfig{
		enabled:   true,
		interval:  DefaultDispatchInterval,
		batchSize: DefaultDispatchBatchSize,
	}
}

// Enabled reports whether the dispatcher runs.
func (c DispatchConfig) Enabled() bool { return c.enabled }

// Interval returns the dispatch tick period.
func (c DispatchConfig) Interval() time.Duration {
	if c.interval <= 0 {
		return DefaultDispatchInterval
	}
	return c.interval
}

// BatchSize returns the maximum pending records per tick.
func (c DispatchConfig) BatchSize() int {
	if c.batchSize <= 0 {
		return DefaultDispatchBatchSize
	}
	return c.batchSize
}

// WithEnabled returns a copy with the enabled flag set.
func (c DispatchConfig) WithEnabled(enabled bool) DispatchConfig {
	c.enabled = enabled
	return c
}

// WithInterval returns a copy with the tick period set.
func (c DispatchConfig) WithInterval(d time.Duration) DispatchConfig {
	c.interval = d
	return c
}

// WithBatchSize returns a copy with the batch size set.
func (c DispatchConfig) WithBatchSize(n int) DispatchConfig {
	c.batchSize = n
	return c
}

// AppConfig is the immutable application configuration.
type AppConfig struct {
	host                 string
	port                 int
	dbURL                string
	logLevel             string
	logFormat            LogFormat
	brokerURL            string
	storage              StorageConfig
	vision               VisionConfig
	dispatch             DispatchConfig
	extractField         string
	confidenceThreshold  float64
	defaultInstitutionID int
	workerCount          int
	workerPollPeriod     time.Duration
}

// NewAppConfig creates an AppConfig with all defaults applied.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:                 DefaultHost,
		port:                 DefaultPort,
		dbURL:                DefaultDBURL,
		logLevel:             DefaultLogLevel,
		logFormat:            LogFormatPretty,
		dispatch:             NewDispatchConfig(),
		extractField:         DefaultExtractField,
		confidenceThreshold:  DefaultConfidenceThreshold,
		defaultInstitutionID: DefaultInstitutionID,
		workerCount:          DefaultWorkerCount,
		workerPollPeriod:     DefaultWorkerPollPeriod,
	}
}

// AppConfigOption modifies an AppConfig.
type AppConfigOption func(AppConfig) AppConfig

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c AppConfig) AppConfig { c.host = host; return c }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c AppConfig) AppConfig { c.port = port; return c }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c AppConfig) AppConfig { c.dbURL = url; return c }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c AppConfig) AppConfig { c.logLevel = level; return c }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c AppConfig) AppConfig { c.logFormat = format; return c }
}

// WithBrokerURL sets the task broker URL.
func WithBrokerURL(url string) AppConfigOption {
	return func(c AppConfig) AppConfig { c.brokerURL = url; return c }
}

// WithStorage sets the object store configuration.
func WithStorage(storage StorageConfig) AppConfigOption {
	return func(c AppConfig) AppConfig { c.storage = storage; return c }
}

// WithVision sets the vision endpoint configuration.
func WithVision(vision VisionConfig) AppConfigOption {
	return func(c AppConfig) AppConfig { c.vision = vision; return c }
}

// WithDispatch sets the dispatcher configuration.
func WithDispatch(dispatch DispatchConfig) AppConfigOption {
	return func(c AppConfig) AppConfig { c.dispatch = dispatch; return c }
}

// WithExtractField sets the field name extracted from images.
func WithExtractField(field string) AppConfigOption {
	return func(c AppConfig) AppConfig { c.extractField = field; return c }
}

// WithConfidenceThreshold sets the low-confidence log threshold.
func WithConfidenceThreshold(t float64) AppConfigOption {
	return func(c AppConfig) AppConfig { c.confidenceThreshold = t; return c }
}

// WithDefaultInstitutionID sets the fallback institution identifier.
func WithDefaultInstitutionID(id int) AppConfigOption {
	return func(c AppConfig) AppConfig { c.defaultInstitutionID = id; return c }
}

// WithWorkerCount sets the number of extraction workers.
func WithWorkerCount(n int) AppConfigOption {
	return func(c AppConfig) AppConfig { c.workerCount = n; return c }
}

// WithWorkerPollPeriod sets the worker queue poll period.
func WithWorkerPollPeriod(d time.Duration) AppConfigOption {
	return func(c AppConfig) AppConfig { c.workerPollPeriod = d; return c }
}

// Apply returns a copy of the config with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port listen address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// BrokerURL returns the task broker URL (empty selects the database queue).
func (c AppConfig) BrokerURL() string { return c.brokerURL }

// Storage returns the object store configuration.
func (c AppConfig) Storage() StorageConfig { return c.storage }

// Vision returns the vision endpoint configuration.
func (c AppConfig) Vision() VisionConfig { return c.vision }

// Dispatch returns the dispatcher configuration.
func (c AppConfig) Dispatch() DispatchConfig { return c.dispatch }

// ExtractField returns the field name extracted from images.
func (c AppConfig) ExtractField() string { return c.extractField }

// ConfidenceThreshold returns the low-confidence log threshold.
func (c AppConfig) ConfidenceThreshold() float64 { return c.confidenceThreshold }

// DefaultInstitutionID returns the fallback institution identifier.
func (c AppConfig) DefaultInstitutionID() int { return c.defaultInstitutionID }

// WorkerCount returns the number of extraction workers.
func (c AppConfig) WorkerCount() int { return c.workerCount }

// WorkerPollPeriod returns the worker queue poll period.
func (c AppConfig) WorkerPollPeriod() time.Duration { return c.workerPollPeriod }

// LogAttrs returns the config as slog attributes for startup logging.
// Secrets are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("db_url", maskURL(c.dbURL)),
		slog.String("broker_url", maskURL(c.brokerURL)),
		slog.String("storage_endpoint", c.storage.endpoint),
		slog.String("storage_bucket", c.storage.bucket),
		slog.String("vision_model", c.vision.model),
		slog.String("extract_field", c.extractField),
		slog.Bool("dispatch_enabled", c.dispatch.Enabled()),
		slog.Duration("dispatch_interval", c.dispatch.Interval()),
		slog.Int("dispatch_batch_size", c.dispatch.BatchSize()),
		slog.Int("worker_count", c.workerCount),
	}
}

// maskURL strips userinfo credentials from a connection URL for logging.
func maskURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at == -1 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme == -1 {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
