// Package config provides configuration loading for the studio client.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EventBusGoChannel = "gochannel"
	EventBusKafka     = "kafka"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the client configuration. Values from a YAML file are applied on
// top of Default; command-line flags are applied on top of that.
type Config struct {
	APIURL          string        `yaml:"api_url"          validate:"required,url"`
	Token           string        `yaml:"token"`
	PollInterval    time.Duration `yaml:"poll_interval"    validate:"gte=10ms"`
	HistoryInterval time.Duration `yaml:"history_interval" validate:"gte=100ms"`
	HistoryLimit    int           `yaml:"history_limit"    validate:"min=1,max=100"`
	CompactWidth    int           `yaml:"compact_width"    validate:"min=0"`
	LogLevel        string        `yaml:"log_level"        validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"log_format"       validate:"oneof=text json"`
	EventBus        string        `yaml:"event_bus"        validate:"oneof=gochannel kafka"`
	KafkaBrokers    []string      `yaml:"kafka_brokers"    validate:"required_if=EventBus kafka,dive,hostname_port"`
	Tracing         bool          `yaml:"tracing"`
}

func Default() Config {
	return Config{
		APIURL:          "http://localhost:9091",
		PollInterval:    time.Second,
		HistoryInterval: 10 * time.Second,
		HistoryLimit:    20,
		CompactWidth:    768,
		LogLevel:        "info",
		LogFormat:       "text",
		EventBus:        EventBusGoChannel,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
