package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errData = errors.New("bad request")

// scriptedOp returns the queued errors one by one, then succeeds.
// Not thread-safe, should be used in sequential tests only.
type scriptedOp struct {
	calls     int
	responses []error
}

func (s *scriptedOp) run(_ context.Context) (string, error) {
	s.calls++
	if len(s.responses) > 0 {
		err := s.responses[0]
		s.responses = s.responses[1:]
		if err != nil {
			return "", err
		}
	}
	return "ok", nil
}

func newTestExecutor() *Executor[string] {
	return NewExecutor[string]("test-cb", config.ResilienceConfig{
		Retry: config.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 5,
			ErrorRatePercent:    60,
			OpenTimeout:         5 * time.Second,
		},
	})
}

func transient() error {
	return Transient(errors.New("unavailable"))
}

func TestExecutor_HappyPath(t *testing.T) {
	// given
	exec := newTestExecutor()
	op := &scriptedOp{}

	// when
	res, err := exec.Execute(context.Background(), op.run)

	// then
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 1, op.calls, "operation should be called exactly once")
}

func TestExecutor_RetryOnTransientError(t *testing.T) {
	// given
	exec := newTestExecutor()
	op := &scriptedOp{responses: []error{transient(), transient(), nil}}

	// when
	res, err := exec.Execute(context.Background(), op.run)

	// then
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, op.calls, "operation should be called 3 times due to retries")
}

func TestExecutor_NoRetryOnDataError(t *testing.T) {
	// given
	exec := newTestExecutor()
	op := &scriptedOp{responses: []error{errData}}

	// when
	_, err := exec.Execute(context.Background(), op.run)

	// then
	require.ErrorIs(t, err, errData)
	assert.Equal(t, 1, op.calls, "no retries on data error")
}

func TestExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	// given
	exec := newTestExecutor()
	op := &scriptedOp{responses: []error{transient(), transient(), transient(), nil}}

	// when
	_, err := exec.Execute(context.Background(), op.run)

	// then
	require.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_CircuitBreakerOpens(t *testing.T) {
	// given
	exec := newTestExecutor()
	responses := make([]error, 10)
	for i := range responses {
		responses[i] = transient()
	}
	op := &scriptedOp{responses: responses}

	// when: two calls, three attempts each
	for i := 0; i < 2; i++ {
		_, err := exec.Execute(context.Background(), op.run)
		require.Error(t, err)
	}

	// then
	require.Equal(t, gobreaker.StateOpen, exec.State())
	calls := op.calls

	_, err := exec.Execute(context.Background(), op.run)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, op.calls, "open breaker should block the call")
}

func TestExecutor_CircuitBreakerIgnoresDataError(t *testing.T) {
	// given
	exec := newTestExecutor()
	responses := make([]error, 10)
	for i := range responses {
		responses[i] = errData
	}
	op := &scriptedOp{responses: responses}

	// when
	for i := 0; i < 10; i++ {
		_, err := exec.Execute(context.Background(), op.run)
		require.ErrorIs(t, err, errData)
	}

	// then
	assert.Equal(t, 10, op.calls)
	assert.Equal(t, gobreaker.StateClosed, exec.State())
}

func TestExecutor_StopsOnContextCancel(t *testing.T) {
	// given
	exec := newTestExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	op := &scriptedOp{responses: []error{transient(), transient(), transient()}}

	// when
	_, err := exec.Execute(ctx, op.run)

	// then
	require.Error(t, err)
	assert.LessOrEqual(t, op.calls, 1)
}

func TestTransient(t *testing.T) {
	cause := errors.New("boom")

	assert.NoError(t, Transient(nil))
	assert.ErrorIs(t, Transient(cause), ErrTransient)
	assert.ErrorIs(t, Transient(cause), cause)
	assert.Equal(t, "boom", Transient(cause).Error())
}
