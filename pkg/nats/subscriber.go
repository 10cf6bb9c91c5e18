package nats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// AckableMsg is the part of jetstream.Msg a handler outcome is reported on.
type AckableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
}

// MessageHandler processes one message payload. A returned error naks the message.
type MessageHandler func(ctx context.Context, data []byte) error

// Subscribe creates (or updates) a durable pull consumer and runs cfg.Workers
// workers feeding handle until ctx is cancelled.
func Subscribe(ctx context.Context, js jetstream.JetStream, cfg config.SubscriberConfig, handle MessageHandler, logger *slog.Logger) error {
	consumerCfg := jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, consumerCfg)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, handle, logger)
		})
	}
	return g.Wait()
}

// runWorker fetches batches from the consumer until ctx is done.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, handle MessageHandler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			logger.ErrorContext(ctx, "Failed to fetch messages", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
			continue
		}
		for msg := range batch.Messages() {
			handleMessage(ctx, msg, handle, logger)
		}
		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			logger.WarnContext(ctx, "Fetch batch ended with error", "error", err)
		}
	}
}

// handleMessage runs the handler and acks on success, naks on failure.
func handleMessage(ctx context.Context, msg AckableMsg, handle MessageHandler, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "Received nil message")
		return
	}
	if err := handle(ctx, msg.Data()); err != nil {
		logger.ErrorContext(ctx, "Failed to handle message", "error", err)
		if err := msg.Nak(); err != nil {
			logger.ErrorContext(ctx, "Failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "Failed to ack message", "error", err)
	}
}
