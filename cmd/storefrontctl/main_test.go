package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	// keep the developer's config and .env out of the test
	dir := t.TempDir()
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	data := `[
		{"Id":1,"title":"A","price":10,"category":"A"},
		{"Id":2,"title":"B","price":50,"category":"B","description":"Plain Shirt"},
		{"Id":3,"title":"C","price":"20.00","category":"B"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestQueryCommand(t *testing.T) {
	file := writeCatalog(t)
	testCases := []struct {
		name    string
		args    []string
		wantIDs []int64
	}{
		{name: "everything", args: nil, wantIDs: []int64{1, 2, 3}},
		{name: "price window", args: []string{"--min", "20", "--max", "100"}, wantIDs: []int64{2, 3}},
		{name: "inverted range clamps", args: []string{"--min", "60", "--max", "20"}, wantIDs: []int64{3}},
		{name: "min only", args: []string{"--min", "20"}, wantIDs: []int64{2, 3}},
		{name: "price high", args: []string{"--sort", "price-high"}, wantIDs: []int64{2, 3, 1}},
		{name: "category newest", args: []string{"--category", "B", "--sort", "newest"}, wantIDs: []int64{3, 2}},
		{name: "search", args: []string{"--search", "shirt"}, wantIDs: []int64{2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			out, err := execute(t, append([]string{"query", "--file", file}, tc.args...)...)

			// then
			require.NoError(t, err)
			var products []catalog.Product
			require.NoError(t, json.Unmarshal([]byte(out), &products))
			ids := make([]int64, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestQueryCommand_EmbeddedCatalogue(t *testing.T) {
	out, err := execute(t, "query", "--category", "Footwear")

	require.NoError(t, err)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, "Footwear", p.Category)
	}
}

func TestCommandErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad min", args: []string{"query", "--min", "cheap"}},
		{name: "unknown source", args: []string{"query", "--source", "mongo"}},
		{name: "migrate without database", args: []string{"migrate", "up"}},
		{name: "seed without database", args: []string{"seed"}},
		{name: "watch without nats", args: []string{"watch"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestPrintNotification(t *testing.T) {
	// given
	var out bytes.Buffer
	handle := printNotification(&out)
	event := events.NewCartNotificationEvent("", "Cart cleared!")
	payload, err := event.Payload()
	require.NoError(t, err)

	// when
	err = handle(context.Background(), payload)
	badErr := handle(context.Background(), []byte("garbage"))

	// then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cart cleared!")
	assert.Error(t, badErr)
}
