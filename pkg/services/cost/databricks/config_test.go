package databricks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgregistry "github.com/de-tools/cost-atlas/pkg/services/config"
)

func TestLoadConfig_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "valid.yaml")
	// No indentation inside the backtick block to avoid YAML parsing errors
	content := `host: "example.com:443"
token: "tok"
http_path: "/sql/1.0/warehouses/wh"
catalog: "main"
schema: "default"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Host:     "example.com:443",
		Token:    "tok",
		HTTPPath: "/sql/1.0/warehouses/wh",
		Catalog:  "main",
		Schema:   "default",
	}, cfg)

	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "token:tok@example.com:443/sql/1.0/warehouses/wh?catalog=main&schema=default", dsn)
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: example:443: bad"), 0o644))

	// When
	_, err := LoadConfig(path)

	// Then
	assert.Error(t, err)
}

func TestLoadProfile_FromDatabricksCfg(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), ".databrickscfg")
	content := `[billing]
host = https://dbc-1.cloud.databricks.com/
token = dapi-1
warehouse_id = abc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	registry, err := cfgregistry.NewRegistry(path)
	require.NoError(t, err)

	// When
	cfg, err := LoadProfile(context.Background(), registry, "billing")

	// Then
	require.NoError(t, err)
	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "token:dapi-1@dbc-1.cloud.databricks.com:443/sql/1.0/warehouses/abc", dsn)
}

func TestConfig_DSN_MissingFields(t *testing.T) {
	_, err := (&Config{Host: "example.com"}).DSN()

	assert.ErrorContains(t, err, "token, http_path")
}
