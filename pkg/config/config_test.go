package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
api_url: https://studio.example.com
token: secret
poll_interval: 250ms
history_limit: 50
log_format: json
event_bus: kafka
kafka_brokers:
  - kafka-1:9092
  - kafka-2:9092
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://studio.example.com", cfg.APIURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.HistoryInterval)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"kafka without brokers": "event_bus: kafka\n",
		"unknown bus":           "event_bus: nats\n",
		"bad url":               "api_url: not a url\n",
		"limit too large":       "history_limit: 1000\n",
		"poll too fast":         "poll_interval: 1ms\n",
		"bad level":             "log_level: loud\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "api_url: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}
