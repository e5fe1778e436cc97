package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

type stubSource struct {
	name string
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Dimensions(cost.Query) []string { return nil }

func (s stubSource) Fetch(context.Context, cost.Query) ([]domain.RawRow, error) {
	return nil, nil
}

func stubRegistry(t *testing.T) cost.Registry {
	t.Helper()
	reg := cost.NewRegistry()
	require.NoError(t, reg.Register("aws", func(_ context.Context, _ string) (cost.Source, error) {
		return stubSource{name: "aws"}, nil
	}))
	require.NoError(t, reg.Register("azure", func(_ context.Context, profile string) (cost.Source, error) {
		return nil, errors.New("no subscription in profile " + profile)
	}))
	return reg
}

func TestDefault_RegistersBuiltinSources(t *testing.T) {
	assert.Equal(t, []string{"aws", "azure", "databricks", "gcp", "snowflake"}, Default().List())
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	// Given
	reg := cost.NewRegistry()
	factory := func(context.Context, string) (cost.Source, error) { return stubSource{name: "aws"}, nil }
	mustRegister(reg, "aws", factory)

	// When / Then
	assert.PanicsWithValue(t, `failed to register built-in source: source "aws" is already registered`, func() {
		mustRegister(reg, "aws", factory)
	})
	assert.Panics(t, func() { mustRegister(reg, "gcp", nil) })
}

func TestSources_SkipsFailingSources(t *testing.T) {
	// Given
	cfg := &config.AppConfig{Sources: map[string]config.SourceConfig{
		"aws":   {Profile: "billing"},
		"azure": {Profile: "default"},
		"gcp":   {Disabled: true},
	}}

	// When
	sources, err := Sources(context.Background(), stubRegistry(t), cfg)

	// Then
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "aws", sources[0].Name())
}

func TestSources_AllFailing(t *testing.T) {
	cfg := &config.AppConfig{Sources: map[string]config.SourceConfig{"azure": {}}}

	_, err := Sources(context.Background(), stubRegistry(t), cfg)

	assert.ErrorContains(t, err, "none of the configured sources")
}

func TestNewService(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Anomaly.Model = "seasonal"

	svc, err := NewService(context.Background(), []cost.Source{stubSource{name: "aws"}}, cfg, prometheus.NewRegistry())

	require.NoError(t, err)
	assert.Equal(t, []string{"aws"}, svc.Sources())

	cfg.Anomaly.Model = "unknown"
	_, err = NewService(context.Background(), nil, cfg, prometheus.NewRegistry())
	assert.Error(t, err)
}
