package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Defaulter = (*Config)(nil)
)

// Catalog sources.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

// Cart storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Catalog    CatalogConfig           `koanf:"catalog"`
	Cart       CartConfig              `koanf:"cart"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Subscriber config.SubscriberConfig `koanf:"subscriber"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

type CatalogConfig struct {
	// Source selects the product provider: memory, postgres or remote.
	Source string `koanf:"source"`
	// File is an optional JSON catalogue for the memory source; the embedded one is used when empty.
	File    string        `koanf:"file"`
	Latency time.Duration `koanf:"latency"`
	Remote  struct {
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"remote"`
}

type CartConfig struct {
	StorageKey string `koanf:"key"`
	Storage    struct {
		Driver string `koanf:"driver"`
		Path   string `koanf:"path"`
	} `koanf:"storage"`
}

// Defaults returns fallback values for every setting. The receiver is not used, so it is safe on a nil *Config.
func (c *Config) Defaults() map[string]any {
	return map[string]any{
		"server.port":                                   8080,
		"server.maxHeaderBytes":                         1 << 20,
		"server.timeout.read":                           "5s",
		"server.timeout.write":                          "10s",
		"server.timeout.idle":                           "60s",
		"server.timeout.readHeader":                     "2s",
		"catalog.source":                                SourceMemory,
		"catalog.latency":                               "0s",
		"catalog.remote.timeout":                        "5s",
		"cart.key":                                      "swift-shop-cart",
		"cart.storage.driver":                           StorageSQLite,
		"cart.storage.path":                             "storefront.db",
		"database.timeout":                              "5s",
		"database.migrations":                           "file://migrations",
		"resilience.retry.maxattempts":                  3,
		"resilience.retry.initialbackoff":               "100ms",
		"resilience.retry.maxbackoff":                   "2s",
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    60,
		"resilience.circuitbreaker.opentimeout":         "10s",
		"nats.subject":                                  "storefront.cart.notifications",
		"nats.timeout":                                  "5s",
		"subscriber.stream":                             "STOREFRONT_CART",
		"subscriber.subject":                            "storefront.cart.notifications",
		"subscriber.consumer":                           "storefrontctl-watch",
		"subscriber.batch":                              10,
		"subscriber.timeout":                            "5s",
		"subscriber.interval":                           "1s",
		"subscriber.workers":                            1,
		"telemetry.metrics.enabled":                     true,
		"telemetry.metrics.path":                        "/metrics",
		"grpc.port":                                     "50051",
		"log.level":                                     "info",
		"shutdown.timeout":                              "10s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.source: %s\n", c.Catalog.Source))
	b.WriteString(fmt.Sprintf("  catalog.file: %s\n", c.Catalog.File))
	b.WriteString(fmt.Sprintf("  catalog.latency: %s\n", c.Catalog.Latency))
	b.WriteString(fmt.Sprintf("  catalog.remote.url: %s\n", c.Catalog.Remote.URL))
	b.WriteString(fmt.Sprintf("  catalog.remote.timeout: %s\n", c.Catalog.Remote.Timeout))

	b.WriteString("\n--- Cart ---\n")
	b.WriteString(fmt.Sprintf("  cart.key: %s\n", c.Cart.StorageKey))
	b.WriteString(fmt.Sprintf("  cart.storage.driver: %s\n", c.Cart.Storage.Driver))
	b.WriteString(fmt.Sprintf("  cart.storage.path: %s\n", c.Cart.Storage.Path))

	if c.Catalog.Source == SourcePostgres {
		b.WriteString(c.Database.String())
	}
	if c.Catalog.Source == SourceRemote {
		b.WriteString(c.Resilience.String())
	}
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Cart.Validate(); err != nil {
		return err
	}
	switch c.Catalog.Source {
	case SourcePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case SourceRemote:
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}

func (c *CatalogConfig) Validate() error {
	switch c.Source {
	case SourceMemory:
	case SourcePostgres:
	case SourceRemote:
		if !strings.HasPrefix(c.Remote.URL, "http://") && !strings.HasPrefix(c.Remote.URL, "https://") {
			return fmt.Errorf("catalog.remote.url must be an http(s) URL: %q", c.Remote.URL)
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("catalog.remote.timeout must be greater than 0")
		}
	default:
		return fmt.Errorf("unknown catalog source: %q", c.Source)
	}
	if c.Latency < 0 {
		return fmt.Errorf("catalog.latency must not be negative")
	}
	return nil
}

func (c *CartConfig) Validate() error {
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("cart.key is not configured")
	}
	switch c.Storage.Driver {
	case StorageSQLite, StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("cart.storage.path is required for the %s driver", c.Storage.Driver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown cart storage driver: %q", c.Storage.Driver)
	}
	return nil
}
