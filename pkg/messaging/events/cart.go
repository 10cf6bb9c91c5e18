package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

// CartNotificationEvent carries a user-facing cart message.
type CartNotificationEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	subject string
}

// NewCartNotificationEvent creates an event for the given subject.
// An empty subject falls back to messaging.CartNotificationsSubject.
func NewCartNotificationEvent(subject, message string) CartNotificationEvent {
	if subject == "" {
		subject = messaging.CartNotificationsSubject
	}
	return CartNotificationEvent{
		EventID:   uuid.New(),
		Message:   message,
		CreatedAt: time.Now().UTC(),
		subject:   subject,
	}
}

func (e CartNotificationEvent) Subject() string {
	if e.subject == "" {
		return messaging.CartNotificationsSubject
	}
	return e.subject
}

func (e CartNotificationEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
