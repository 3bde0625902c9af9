package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "meetingagent", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ExporterPrometheus, cfg.MetricsExporter)
	assert.Equal(t, ExporterNone, cfg.TracingExporter)
	assert.Equal(t, 0.1, cfg.TraceSamplingRate)
	assert.Equal(t, "/metrics", cfg.PrometheusEndpoint)
	assert.False(t, cfg.DetailedLabels)
	assert.True(t, cfg.AuditLogging.Enabled)
	assert.False(t, cfg.AuditLogging.IncludePII)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			modify: func(c *Config) {},
		},
		{
			name: "sampling rate too high",
			modify: func(c *Config) {
				c.TraceSamplingRate = 1.5
			},
			wantErr: "trace sampling rate",
		},
		{
			name: "sampling rate negative",
			modify: func(c *Config) {
				c.TraceSamplingRate = -0.1
			},
			wantErr: "trace sampling rate",
		},
		{
			name: "invalid metrics exporter",
			modify: func(c *Config) {
				c.MetricsExporter = "statsd"
			},
			wantErr: "invalid metrics exporter",
		},
		{
			name: "invalid tracing exporter",
			modify: func(c *Config) {
				c.TracingExporter = "jaeger"
			},
			wantErr: "invalid tracing exporter",
		},
		{
			name: "otlp tracing without endpoint",
			modify: func(c *Config) {
				c.TracingExporter = ExporterOTLP
				c.OTLPEndpoint = ""
			},
			wantErr: "OTLP endpoint is required",
		},
		{
			name: "otlp metrics without endpoint",
			modify: func(c *Config) {
				c.MetricsExporter = ExporterOTLP
				c.OTLPEndpoint = ""
			},
			wantErr: "OTLP endpoint is required",
		},
		{
			name: "otlp with endpoint is valid",
			modify: func(c *Config) {
				c.TracingExporter = ExporterOTLP
				c.OTLPEndpoint = "localhost:4318"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	t.Setenv("TEST_BOOL_VAR", "false")
	assert.False(t, getEnvBoolOrDefault("TEST_BOOL_VAR", true))

	t.Setenv("TEST_BOOL_VAR", "not-a-bool")
	assert.True(t, getEnvBoolOrDefault("TEST_BOOL_VAR", true))

	assert.True(t, getEnvBoolOrDefault("TEST_BOOL_VAR_MISSING", true))
}

func TestGetEnvFloatOrDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "0.5")
	assert.Equal(t, 0.5, getEnvFloatOrDefault("TEST_FLOAT_VAR", 0.1))

	t.Setenv("TEST_FLOAT_VAR", "bogus")
	assert.Equal(t, 0.1, getEnvFloatOrDefault("TEST_FLOAT_VAR", 0.1))
}
