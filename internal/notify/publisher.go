package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
)

// Publisher sends each message as a CartNotificationEvent. Publishing runs in
// the background so a slow broker never holds up a cart mutation.
type Publisher struct {
	publisher messaging.Publisher
	subject   string
	timeout   time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewPublisher(publisher messaging.Publisher, subject string, timeout time.Duration, logger *slog.Logger) *Publisher {
	return &Publisher{
		publisher: publisher,
		subject:   subject,
		timeout:   timeout,
		logger:    logger.With("component", "notify", "subject", subject),
	}
}

func (p *Publisher) Notify(ctx context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.WarnContext(ctx, "Notification dropped, publisher closed", "message", message)
		return
	}
	event := events.NewCartNotificationEvent(p.subject, message)
	// the request context ends with the response; keep its values (trace) only
	pubCtx := context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if p.timeout > 0 {
			var cancel context.CancelFunc
			pubCtx, cancel = context.WithTimeout(pubCtx, p.timeout)
			defer cancel()
		}
		if err := p.publisher.Publish(pubCtx, event); err != nil {
			p.logger.ErrorContext(pubCtx, "Failed to publish cart notification", "event_id", event.EventID, "error", err)
			return
		}
		p.logger.DebugContext(pubCtx, "Cart notification published", "event_id", event.EventID)
	}()
}

// Close stops accepting messages and waits for in-flight publishes until ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
