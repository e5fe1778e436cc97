package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profiles = `[DEFAULT]
host = https://dbc-1.cloud.databricks.com
token = dapi-1
http_path = /sql/1.0/warehouses/abc

[billing]
host = https://dbc-2.cloud.databricks.com
token = dapi-2
warehouse_id = def

[broken]
token = dapi-3
`

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".databrickscfg")
	require.NoError(t, os.WriteFile(path, []byte(profiles), 0o600))
	return path
}

func TestRegistry_Profiles(t *testing.T) {
	// Given
	reg, err := NewRegistry(writeProfiles(t))
	require.NoError(t, err)
	ctx := context.Background()

	// When
	names, err := reg.GetProfiles(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"DEFAULT", "billing", "broken"}, names)

	cfg, err := reg.GetConfig(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "https://dbc-1.cloud.databricks.com", cfg.Host)
	assert.Equal(t, "dapi-1", cfg.Token)

	path, err := reg.GetHTTPPath(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "/sql/1.0/warehouses/abc", path)

	path, err = reg.GetHTTPPath(ctx, "billing")
	require.NoError(t, err)
	assert.Equal(t, "/sql/1.0/warehouses/def", path)
}

func TestRegistry_Errors(t *testing.T) {
	reg, err := NewRegistry(writeProfiles(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = reg.GetConfig(ctx, "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = reg.GetConfig(ctx, "broken")
	assert.ErrorContains(t, err, "no host")

	_, err = reg.GetHTTPPath(ctx, "broken")
	assert.Error(t, err)

	_, err = NewRegistry(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
