// Package resilience wraps outbound calls in a circuit breaker and an exponential retry.
package resilience

import (
	"context"
	"errors"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrTransient marks failures that are worth retrying and that count against the circuit breaker.
var ErrTransient = errors.New("transient failure")

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func (e *transientError) Is(target error) bool { return target == ErrTransient }

// Transient marks err as transient. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// NewCircuitBreaker creates a breaker that only counts transient failures.
// Other errors (not found, bad request) don't trip it.
func NewCircuitBreaker[T any](name string, cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrTransient)
		},
	}
	return gobreaker.NewCircuitBreaker[T](st)
}

// NewBackOff returns an exponential backoff allowing cfg.MaxAttempts attempts in total.
func NewBackOff(cfg config.RetryConfig) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.InitialBackoff
	if cfg.MaxBackoff > 0 {
		eb.MaxInterval = cfg.MaxBackoff
	}
	eb.MaxElapsedTime = 0
	var retries uint64
	if cfg.MaxAttempts > 1 {
		retries = uint64(cfg.MaxAttempts - 1)
	}
	return backoff.WithMaxRetries(eb, retries)
}

// Executor runs operations through a retry loop whose every attempt passes the circuit breaker.
type Executor[T any] struct {
	breaker *gobreaker.CircuitBreaker[T]
	retry   config.RetryConfig
}

// NewExecutor creates an Executor with a breaker of the given name.
func NewExecutor[T any](name string, cfg config.ResilienceConfig) *Executor[T] {
	return &Executor[T]{
		breaker: NewCircuitBreaker[T](name, cfg.CircuitBreaker),
		retry:   cfg.Retry,
	}
}

// Execute runs op until it succeeds, fails permanently or the attempts are exhausted.
// Only errors marked with Transient are retried; an open breaker is never retried.
func (e *Executor[T]) Execute(ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.WithContext(NewBackOff(e.retry), ctx)
	return backoff.RetryWithData(func() (T, error) {
		res, err := e.breaker.Execute(func() (T, error) {
			return op(ctx)
		})
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrTransient) {
			return res, err
		}
		return res, backoff.Permanent(err)
	}, b)
}

// State reports the current breaker state.
func (e *Executor[T]) State() gobreaker.State {
	return e.breaker.State()
}
