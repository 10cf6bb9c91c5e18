// Package storage provides key-value stores for persisting the cart.
package storage

import (
	"context"
	"fmt"
	"io"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value stored under key; found is false when there is none.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	io.Closer
}

// Open returns the store selected by driver: sqlite and file need a path, memory ignores it.
func Open(driver, path string) (KV, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(path)
	case "file":
		return NewFile(path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", driver)
	}
}
