package messaging

import (
	"context"
)

const (
	// CartNotificationsSubject is the default subject for cart notifications.
	CartNotificationsSubject = "storefront.cart.notifications"
	// CartNotificationsStream is the JetStream stream capturing cart notifications.
	CartNotificationsStream = "STOREFRONT_CART"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
