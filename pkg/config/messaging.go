package config

import (
	"errors"
	"fmt"
	"time"
)

// NATSConfig configures the optional JetStream sink for cart notifications.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Subject string        `koanf:"subject"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *NATSConfig) String() string {
	return section("NATS",
		"nats.enabled", c.Enabled,
		"nats.url", c.Url,
		"nats.subject", c.Subject,
		"nats.timeout", c.Timeout,
	)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Subject == "" {
		return fmt.Errorf("nats.subject is not configured")
	}
	return positive("nats.timeout", c.Timeout)
}

// SubscriberConfig configures a durable pull consumer and its worker pool.
type SubscriberConfig struct {
	Stream   string        `koanf:"stream"`
	Subject  string        `koanf:"subject"`
	Consumer string        `koanf:"consumer"`
	Batch    int           `koanf:"batch"`
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"`
	Workers  int           `koanf:"workers"`
}

func (c *SubscriberConfig) String() string {
	return section("NATS Subscriber",
		"subscriber.stream", c.Stream,
		"subscriber.subject", c.Subject,
		"subscriber.consumer", c.Consumer,
		"subscriber.batch", c.Batch,
		"subscriber.timeout", c.Timeout,
		"subscriber.interval", c.Interval,
		"subscriber.workers", c.Workers,
	)
}

func (c *SubscriberConfig) Validate() error {
	var errs []error
	for _, f := range []struct{ key, value string }{
		{"subscriber.stream", c.Stream},
		{"subscriber.subject", c.Subject},
		{"subscriber.consumer", c.Consumer},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s is not configured", f.key))
		}
	}
	errs = append(errs,
		positive("subscriber.batch", c.Batch),
		positive("subscriber.timeout", c.Timeout),
		positive("subscriber.interval", c.Interval),
		positive("subscriber.workers", c.Workers),
	)
	return errors.Join(errs...)
}
