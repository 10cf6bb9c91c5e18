package nats

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAckableMsg struct {
	mock.Mock
}

func (m *mockAckableMsg) Data() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *mockAckableMsg) Ack() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockAckableMsg) Nak() error {
	args := m.Called()
	return args.Error(0)
}

func Test_handleMessage(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	testCases := []struct {
		name       string
		handlerErr error
		newMockMsg func() *mockAckableMsg
	}{
		{
			name: "handled message is acked",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte(`{"message":"Cart cleared!"}`)).Times(1)
				msg.On("Ack").Return(nil).Times(1)
				return msg
			},
		},
		{
			name:       "failed message is nacked",
			handlerErr: errors.New("bad payload"),
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte("invalid data")).Times(1)
				msg.On("Nak").Return(nil).Times(1)
				return msg
			},
		},
		{
			name: "ack failure is only logged",
			newMockMsg: func() *mockAckableMsg {
				msg := new(mockAckableMsg)
				msg.On("Data").Return([]byte("{}")).Times(1)
				msg.On("Ack").Return(errors.New("connection closed")).Times(1)
				return msg
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockMsg := tc.newMockMsg()
			var got []byte
			handler := func(_ context.Context, data []byte) error {
				got = data
				return tc.handlerErr
			}

			// when
			handleMessage(context.Background(), mockMsg, handler, logger)

			// then
			mockMsg.AssertExpectations(t)
			assert.NotNil(t, got)
		})
	}
}

func Test_handleMessage_NilMessage(t *testing.T) {
	called := false
	handleMessage(context.Background(), nil, func(context.Context, []byte) error {
		called = true
		return nil
	}, slog.New(slog.DiscardHandler))

	assert.False(t, called)
}
