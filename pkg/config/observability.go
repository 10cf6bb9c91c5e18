package config

import (
	"fmt"
	"strings"
	"time"
)

// LogConfig selects the minimum level of the JSON logger.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return section("Log", "log.level", c.Level)
}

func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
}

// TelemetryConfig enables span export over OTLP/HTTP and the Prometheus
// scrape endpoint. Spans and metrics are always recorded in-process; Enabled
// only controls span export.
type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
	Traces  struct {
		OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
	} `koanf:"traces"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig exposes the meter provider's registry over HTTP at Path.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

func (c *TelemetryConfig) String() string {
	return section("Telemetry",
		"telemetry.enabled", c.Enabled,
		"telemetry.traces.otlphttp.endpoint", c.Traces.OtlpHttp.Endpoint,
		"telemetry.traces.otlphttp.insecure", c.Traces.OtlpHttp.Insecure,
		"telemetry.traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout,
		"telemetry.metrics.enabled", c.Metrics.Enabled,
		"telemetry.metrics.path", c.Metrics.Path,
	)
}

func (c *TelemetryConfig) Validate() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("telemetry.metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	if !c.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return fmt.Errorf("telemetry.traces.otlphttp.endpoint is not configured")
	}
	return positive("telemetry.traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout)
}
