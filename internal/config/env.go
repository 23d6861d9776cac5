// Package config provides application configuration.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g. STORAGE_BUCKET, VISION_MODEL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8000)
	Port int `envconfig:"PORT" default:"8000"`

	// DBURL is the database connection URL.
	// Env: DB_URL (default: sqlite:///docubrain.db)
	DBURL string `envconfig:"DB_URL" default:"sqlite:///docubrain.db"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// BrokerURL selects the task broker. Empty uses the database-backed
	// queue; redis:// and amqp:// URLs select the matching broker.
	// Env: BROKER_URL
	BrokerURL string `envconfig:"BROKER_URL"`

	// Storage configures the object store.
	Storage StorageEnv `envconfig:"STORAGE"`

	// Vision configures the generative-vision endpoint.
	Vision VisionEnv `envconfig:"VISION"`

	// Dispatch configures the periodic dispatcher.
	Dispatch DispatchEnv `envconfig:"DISPATCH"`

	// ExtractField is the field the vision model extracts from each image.
	// Env: EXTRACT_FIELD (default: UHID)
	ExtractField string `envconfig:"EXTRACT_FIELD" default:"UHID"`

	// ConfidenceThreshold is the mean log-probability below which an
	// extraction is logged as low-confidence.
	// Env: CONFIDENCE_THRESHOLD (default: -0.5)
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"-0.5"`

	// DefaultInstitutionID is used when an upload carries no hospital header.
	// Env: DEFAULT_INSTITUTION_ID (default: 1)
	DefaultInstitutionID int `envconfig:"DEFAULT_INSTITUTION_ID" default:"1"`

	// WorkerCount is the number of background extraction workers.
	// Env: WORKER_COUNT (default: 1)
	WorkerCount int `envconfig:"WORKER_COUNT" default:"1"`

	// WorkerPollSeconds is the worker's queue poll period in seconds.
	// Env: WORKER_POLL_SECONDS (default: 1)
	WorkerPollSeconds float64 `envconfig:"WORKER_POLL_SECONDS" default:"1"`
}

// StorageEnv holds environment configuration for the object store.
type StorageEnv struct {
	// Endpoint is the object store host:port.
	// Env: STORAGE_ENDPOINT (default: localhost:9000)
	Endpoint string `envconfig:"ENDPOINT" default:"localhost:9000"`

	// AccessKey is the object store access key.
	// Env: STORAGE_ACCESS_KEY
	AccessKey string `envconfig:"ACCESS_KEY"`

	// SecretKey is the object store secret key.
	// Env: STORAGE_SECRET_KEY
	SecretKey string `envconfig:"SECRET_KEY"`

	// Bucket is the bucket all uploads are written to.
	// Env: STORAGE_BUCKET (default: docubrain-uploads)
	Bucket string `envconfig:"BUCKET" default:"docubrain-uploads"`

	// UseSSL enables TLS for object store connections.
	// Env: STORAGE_USE_SSL (default: false)
	UseSSL bool `envconfig:"USE_SSL" default:"false"`
}

// VisionEnv holds environment configuration for the vision endpoint.
type VisionEnv struct {
	// BaseURL is the base URL for the OpenAI-compatible endpoint.
	// Env: VISION_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for authentication.
	// Env: VISION_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the vision model identifier.
	// Env: VISION_MODEL (default: gpt-4o)
	Model string `envconfig:"MODEL" default:"gpt-4o"`

	// Timeout is the request timeout in seconds.
	// Env: VISION_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`
}

// DispatchEnv holds environment configuration for the dispatcher.
type DispatchEnv struct {
	// Enabled controls whether the dispatcher runs.
	// Env: DISPATCH_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// IntervalSeconds is the dispatch tick period in seconds.
	// Env: DISPATCH_INTERVAL_SECONDS (default: 30)
	IntervalSeconds float64 `envconfig:"INTERVAL_SECONDS" default:"30"`

	// BatchSize is the maximum number of pending records per tick.
	// Env: DISPATCH_BATCH_SIZE (default: 10)
	BatchSize int `envconfig:"BATCH_SIZE" default:"10"`
}

// LoadFromEnv loads configuration from environment variables.
// No prefix is used, matching the original deployment's .env layout.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// IsConfigured reports whether a vision endpoint has been set up.
func (e VisionEnv) IsConfigured() bool {
	return e.APIKey != ""
}

// ToVisionConfig converts VisionEnv to VisionConfig.
func (e VisionEnv) ToVisionConfig() VisionConfig {
	return VisionConfig{
		baseURL: e.BaseURL,
		apiKey:  e.APIKey,
		model:   e.Model,
		timeout: time.Duration(e.Timeout * float64(time.Second)),
	}
}

// ToStorageConfig converts StorageEnv to StorageConfig.
func (e StorageEnv) ToStorageConfig() StorageConfig {
	return StorageConfig{
		endpoint:  e.Endpoint,
		accessKey: e.AccessKey,
		secretKey: e.SecretKey,
		bucket:    e.Bucket,
		useSSL:    e.UseSSL,
	}
}

// ToDispatchConfig converts DispatchEnv to DispatchConfig.
func (e DispatchEnv) ToDispatchConfig() DispatchConfig {
	return DispatchConfig{
		enabled:   e.Enabled,
		interval:  time.Duration(e.IntervalSeconds * float64(time.Second)),
		batchSize: e.BatchSize,
	}
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.BrokerURL != "" {
		cfg = cfg.Apply(WithBrokerURL(e.BrokerURL))
	}
	cfg = cfg.Apply(WithStorage(e.Storage.ToStorageConfig()))
	if e.Vision.IsConfigured() {
		cfg = cfg.Apply(WithVision(e.Vision.ToVisionConfig()))
	}
	cfg = cfg.Apply(WithDispatch(e.Dispatch.ToDispatchConfig()))
	if e.ExtractField != "" {
		cfg = cfg.Apply(WithExtractField(e.ExtractField))
	}
	cfg = cfg.Apply(WithConfidenceThreshold(e.ConfidenceThreshold))
	if e.DefaultInstitutionID != 0 {
		cfg = cfg.Apply(WithDefaultInstitutionID(e.DefaultInstitutionID))
	}
	if e.WorkerCount != 0 {
		cfg = cfg.Apply(WithWorkerCount(e.WorkerCount))
	}
	if e.WorkerPollSeconds > 0 {
		cfg = cfg.Apply(WithWorkerPollPeriod(time.Duration(e.WorkerPollSeconds * float64(time.Second))))
	}

	return cfg
}
