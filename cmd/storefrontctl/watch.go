package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging/events"
	pkgnats "github.com/abgdnv/storefront/pkg/nats"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var natsURL string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print cart notifications published to NATS until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if natsURL != "" {
				cfg.Nats.Url = natsURL
			}
			if cfg.Nats.Url == "" {
				return fmt.Errorf("NATS URL is not configured")
			}
			if err := cfg.Subscriber.Validate(); err != nil {
				return err
			}
			logger := opts.logger(cmd)

			nc, err := pkgnats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
			if err != nil {
				return err
			}
			defer nc.Close()
			js, err := pkgnats.NewJetStreamContext(nc)
			if err != nil {
				return err
			}
			if err := pkgnats.EnsureStream(cmd.Context(), js, cfg.Subscriber.Stream, cfg.Subscriber.Subject); err != nil {
				return err
			}

			err = pkgnats.Subscribe(cmd.Context(), js, cfg.Subscriber, printNotification(cmd.OutOrStdout()), logger)
			if err != nil && cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS URL, overrides nats.url")
	return cmd
}

// printNotification returns a handler writing one line per cart notification to w.
// Workers share w, so writes are serialised.
func printNotification(w io.Writer) pkgnats.MessageHandler {
	var mu sync.Mutex
	return func(_ context.Context, data []byte) error {
		var event events.CartNotificationEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to decode cart notification: %w", err)
		}
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintf(w, "%s %s\n", event.CreatedAt.Format(time.RFC3339), event.Message)
		return err
	}
}
