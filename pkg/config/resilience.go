package config

import (
	"errors"
	"fmt"
	"time"
)

// ResilienceConfig tunes the retrying circuit breaker around remote catalog calls.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// RetryConfig describes exponential backoff. MaxAttempts counts the first call.
type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
	MaxBackoff     time.Duration `koanf:"maxbackoff"`
}

// CircuitBreakerConfig opens the breaker after ConsecutiveFailures transient
// failures in a row, or when ErrorRatePercent of the requests in the current
// window failed. 0 disables the rate rule.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	return section("Resilience",
		"resilience.retry.maxattempts", c.Retry.MaxAttempts,
		"resilience.retry.initialbackoff", c.Retry.InitialBackoff,
		"resilience.retry.maxbackoff", c.Retry.MaxBackoff,
		"resilience.circuitbreaker.consecutivefailures", c.CircuitBreaker.ConsecutiveFailures,
		"resilience.circuitbreaker.errorratepercent", c.CircuitBreaker.ErrorRatePercent,
		"resilience.circuitbreaker.opentimeout", c.CircuitBreaker.OpenTimeout,
	)
}

func (c *ResilienceConfig) Validate() error {
	errs := []error{
		positive("resilience.retry.maxattempts", c.Retry.MaxAttempts),
		positive("resilience.retry.initialbackoff", c.Retry.InitialBackoff),
		positive("resilience.circuitbreaker.consecutivefailures", c.CircuitBreaker.ConsecutiveFailures),
		positive("resilience.circuitbreaker.opentimeout", c.CircuitBreaker.OpenTimeout),
	}
	if c.Retry.MaxBackoff > 0 && c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		errs = append(errs, fmt.Errorf("resilience.retry.maxbackoff must not be less than resilience.retry.initialbackoff"))
	}
	if c.CircuitBreaker.ErrorRatePercent < 0 || c.CircuitBreaker.ErrorRatePercent > 100 {
		errs = append(errs, fmt.Errorf("resilience.circuitbreaker.errorratepercent must be between 0 and 100"))
	}
	return errors.Join(errs...)
}
