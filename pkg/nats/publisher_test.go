package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJetStream struct {
	mock.Mock
}

func (m *mockJetStream) PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, msg)
	ack, _ := args.Get(0).(*jetstream.PubAck)
	return ack, args.Error(1)
}

func TestNatsPublisher_Publish(t *testing.T) {
	t.Run("publishes payload to event subject", func(t *testing.T) {
		// given
		js := new(mockJetStream)
		event := events.NewCartNotificationEvent("", "Cart cleared!")
		payload, _ := event.Payload()
		js.On("PublishMsg", mock.Anything, mock.MatchedBy(func(msg *nats.Msg) bool {
			return msg.Subject == event.Subject() && string(msg.Data) == string(payload)
		})).Return(&jetstream.PubAck{Stream: "CART"}, nil).Once()

		// when
		err := NewNatsPublisher(js).Publish(context.Background(), event)

		// then
		require.NoError(t, err)
		js.AssertExpectations(t)
	})

	t.Run("wraps publish errors", func(t *testing.T) {
		// given
		js := new(mockJetStream)
		boom := errors.New("no responders")
		js.On("PublishMsg", mock.Anything, mock.Anything).Return(nil, boom).Once()

		// when
		err := NewNatsPublisher(js).Publish(context.Background(), events.NewCartNotificationEvent("", "x"))

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
