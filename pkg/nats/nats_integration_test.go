package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"golang.org/x/sync/errgroup"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// JetStreamSuite round-trips cart notifications through a real NATS server.
type JetStreamSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *JetStreamSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *JetStreamSuite) TearDownSuite() {
	s.nc.Close()
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestJetStreamIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(JetStreamSuite))
}

func (s *JetStreamSuite) TestPublishAndSubscribe() {
	// given
	stream := "STREAM_" + uuid.NewString()[:8]
	subject := "cart." + uuid.NewString()
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, stream, subject))
	cfg := config.SubscriberConfig{
		Stream:   stream,
		Subject:  subject,
		Consumer: "CONSUMER_" + uuid.NewString()[:8],
		Batch:    5,
		Timeout:  500 * time.Millisecond,
		Interval: 100 * time.Millisecond,
		Workers:  2,
	}

	var (
		mu       sync.Mutex
		received []string
	)
	handler := func(_ context.Context, data []byte) error {
		var event events.CartNotificationEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, event.Message)
		mu.Unlock()
		return nil
	}
	testCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	g, gCtx := errgroup.WithContext(testCtx)
	g.Go(func() error { return Subscribe(gCtx, s.js, cfg, handler, s.logger) })

	// when
	publisher := NewNatsPublisher(s.js)
	for _, msg := range []string{"Tee added to cart!", "Cart cleared!"} {
		require.NoError(s.T(), publisher.Publish(s.ctx, events.NewCartNotificationEvent(subject, msg)))
	}
	_, err := s.js.Publish(s.ctx, subject, []byte("not json"))
	require.NoError(s.T(), err)

	// then
	require.Eventually(s.T(), func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 8*time.Second, 50*time.Millisecond)
	mu.Lock()
	require.ElementsMatch(s.T(), []string{"Tee added to cart!", "Cart cleared!"}, received)
	mu.Unlock()

	cancel()
	require.ErrorIs(s.T(), g.Wait(), context.Canceled)
}
