package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return configloader.LoadWithOptions[*Config]("storefront", configloader.Options{
		ConfigFile: path,
		EnvFile:    filepath.Join(dir, "missing.env"),
	})
}

func TestLoad_Defaults(t *testing.T) {
	// when
	cfg, err := load(t, "")

	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, SourceMemory, cfg.Catalog.Source)
	assert.Equal(t, "swift-shop-cart", cfg.Cart.StorageKey)
	assert.Equal(t, StorageSQLite, cfg.Cart.Storage.Driver)
	assert.Equal(t, "storefront.db", cfg.Cart.Storage.Path)
	assert.Equal(t, uint(3), cfg.Resilience.Retry.MaxAttempts)
	assert.Equal(t, "storefront.cart.notifications", cfg.Nats.Subject)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
	assert.False(t, cfg.Nats.Enabled)
}

func TestLoad_EnvOverridesYaml(t *testing.T) {
	// given
	t.Setenv("STOREFRONT_CATALOG_LATENCY", "250ms")

	// when
	cfg, err := load(t, "catalog:\n  latency: 1s\ncart:\n  storage:\n    driver: memory\n")

	// then
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.Latency)
	assert.Equal(t, StorageMemory, cfg.Cart.Storage.Driver)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown source", yaml: "catalog:\n  source: ftp\n", wantErr: "unknown catalog source"},
		{name: "remote without url", yaml: "catalog:\n  source: remote\n", wantErr: "catalog.remote.url"},
		{name: "postgres without url", yaml: "catalog:\n  source: postgres\n", wantErr: "database URL"},
		{name: "unknown driver", yaml: "cart:\n  storage:\n    driver: redis\n", wantErr: "unknown cart storage driver"},
		{name: "file driver without path", yaml: "cart:\n  storage:\n    driver: file\n    path: \"\"\n", wantErr: "cart.storage.path"},
		{name: "blank key", yaml: "cart:\n  key: \" \"\n", wantErr: "cart.key"},
		{name: "nats enabled without url", yaml: "nats:\n  enabled: true\n", wantErr: "NATS URL"},
		{name: "negative latency", yaml: "catalog:\n  latency: -1s\n", wantErr: "catalog.latency"},
		{name: "valid remote", yaml: "catalog:\n  source: remote\n  remote:\n    url: http://localhost:3000\n"},
		{name: "valid postgres", yaml: "catalog:\n  source: postgres\ndatabase:\n  url: postgres://u:p@localhost/db\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.yaml)

			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_StringMasksDatabaseURL(t *testing.T) {
	cfg, err := load(t, "catalog:\n  source: postgres\ndatabase:\n  url: postgres://user:secret@db:5432/shop\n")
	require.NoError(t, err)

	s := cfg.String()

	assert.Contains(t, s, "catalog.source: postgres")
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "db:5432/shop")
}
