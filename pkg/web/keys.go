package web

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

type requestIDKey struct{}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context.
// Falls back to the chi request id when the injector did not run.
func GetRequestID(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id, true
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return id, true
	}
	return "", false
}
