// Package config holds the configuration sections shared by the storefront binaries.
// Every section can describe itself for the startup log and validate its values.
package config

import (
	"fmt"
	"strings"
)

// section renders a titled block of "key: value" lines. pairs alternates keys and values.
func section(title string, pairs ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "  %v: %v\n", pairs[i], pairs[i+1])
	}
	return b.String()
}

// positive reports an error naming key when v is not greater than zero.
func positive[T ~int | ~int64 | ~uint | ~uint32](key string, v T) error {
	if v <= 0 {
		return fmt.Errorf("%s must be greater than 0", key)
	}
	return nil
}
