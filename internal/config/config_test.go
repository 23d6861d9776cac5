package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, "0.0.0.0:8000", app.Addr())
	assert.Equal(t, DefaultDBURL, app.DBURL())
	assert.Equal(t, "UHID", app.ExtractField())
	assert.InDelta(t, -0.5, app.ConfidenceThreshold(), 1e-9)
	assert.Equal(t, 1, app.DefaultInstitutionID())
	assert.True(t, app.Dispatch().Enabled())
	assert.Equal(t, 30*time.Second, app.Dispatch().Interval())
	assert.Equal(t, 10, app.Dispatch().BatchSize())
	assert.Equal(t, "docubrain-uploads", app.Storage().Bucket())
	assert.False(t, app.Vision().IsConfigured())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("EXTRACT_FIELD", "MRN")
	t.Setenv("CONFIDENCE_THRESHOLD", "-1.25")
	t.Setenv("DISPATCH_INTERVAL_SECONDS", "5")
	t.Setenv("DISPATCH_BATCH_SIZE", "25")
	t.Setenv("STORAGE_BUCKET", "scans")
	t.Setenv("VISION_API_KEY", "sk-test")
	t.Setenv("VISION_MODEL", "gpt-4o-mini")
	t.Setenv("BROKER_URL", "redis://localhost:6379/0")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, 9001, app.Port())
	assert.Equal(t, "MRN", app.ExtractField())
	assert.InDelta(t, -1.25, app.ConfidenceThreshold(), 1e-9)
	assert.Equal(t, 5*time.Second, app.Dispatch().Interval())
	assert.Equal(t, 25, app.Dispatch().BatchSize())
	assert.Equal(t, "scans", app.Storage().Bucket())
	assert.True(t, app.Vision().IsConfigured())
	assert.Equal(t, "gpt-4o-mini", app.Vision().Model())
	assert.Equal(t, "redis://localhost:6379/0", app.BrokerURL())
}

func TestDispatchConfig_GuardsInvalidValues(t *testing.T) {
	cfg := NewDispatchConfig().WithInterval(0).WithBatchSize(-1)
	assert.Equal(t, DefaultDispatchInterval, cfg.Interval())
	assert.Equal(t, DefaultDispatchBatchSize, cfg.BatchSize())
}

func TestVisionConfig_Defaults(t *testing.T) {
	cfg := NewVisionConfig("", "key", "", 0)
	assert.Equal(t, DefaultVisionModel, cfg.Model())
	assert.Equal(t, DefaultVisionTimeout, cfg.Timeout())
	assert.True(t, cfg.IsConfigured())
}

func TestAppConfig_Apply(t *testing.T) {
	base := NewAppConfig()
	cfg := base.Apply(WithHost("127.0.0.1"), WithPort(9000))

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	// The original is unchanged.
	assert.Equal(t, "0.0.0.0:8000", base.Addr())
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/app", maskURL("postgres://user:secret@db:5432/app"))
	assert.Equal(t, "sqlite:///local.db", maskURL("sqlite:///local.db"))
	assert.Equal(t, "", maskURL(""))
}
