package config

import (
	"errors"
	"fmt"
	"time"
)

// HTTPConfig configures the public REST listener.
type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) String() string {
	return section("HTTP Server",
		"server.port", c.Port,
		"server.maxHeaderBytes", c.MaxHeaderBytes,
		"server.timeout.read", c.Timeout.Read,
		"server.timeout.write", c.Timeout.Write,
		"server.timeout.idle", c.Timeout.Idle,
		"server.timeout.readHeader", c.Timeout.ReadHeader,
	)
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Port)
	}
	return errors.Join(
		positive("server.timeout.read", c.Timeout.Read),
		positive("server.timeout.write", c.Timeout.Write),
		positive("server.timeout.idle", c.Timeout.Idle),
		positive("server.timeout.readHeader", c.Timeout.ReadHeader),
	)
}

// GrpcServerConfig configures the gRPC listener carrying the health service.
type GrpcServerConfig struct {
	Enabled           bool   `koanf:"enabled"`
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) String() string {
	return section("gRPC Server",
		"grpc.enabled", c.Enabled,
		"grpc.port", c.Port,
		"grpc.reflection", c.ReflectionEnabled,
	)
}

func (c *GrpcServerConfig) Validate() error {
	if c.Enabled && c.Port == "" {
		return fmt.Errorf("grpc.port is required when grpc is enabled")
	}
	return nil
}

// PProfConfig configures the optional profiling listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return section("PProf", "pprof.enabled", c.Enabled, "pprof.addr", c.Addr)
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("pprof.addr is required when pprof is enabled")
	}
	return nil
}

// ShutdownConfig bounds how long servers and sinks get to drain on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return section("Shutdown", "shutdown.timeout", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	return positive("shutdown.timeout", c.Timeout)
}
