// Package notify delivers user-facing cart messages. Delivery is best effort:
// failures are logged and never reach the caller.
package notify

import (
	"context"
	"log/slog"
)

// Notifier receives cart messages.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Log writes every message to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(ctx context.Context, message string) {
	l.logger.InfoContext(ctx, "Cart notification", "message", message)
}

// Multi fans a message out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, message)
		}
	}
}
