package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

type fixedSource struct{}

func (fixedSource) Name() string { return "stub" }

func (fixedSource) Dimensions(cost.Query) []string { return []string{"SERVICE"} }

func (fixedSource) Fetch(context.Context, cost.Query) ([]domain.RawRow, error) {
	return []domain.RawRow{
		{"start": "2025-06-01", "amount": 30.0, "currency": "USD", "SERVICE": "compute"},
		{"start": "2025-06-02", "amount": 10.0, "currency": "USD", "SERVICE": "storage"},
	}, nil
}

func testDeps(t *testing.T, profiles *[]string) Deps {
	t.Helper()
	reg := cost.NewRegistry()
	require.NoError(t, reg.Register("stub", func(_ context.Context, profile string) (cost.Source, error) {
		*profiles = append(*profiles, profile)
		return fixedSource{}, nil
	}))
	return Deps{
		Registry: reg,
		Sinks: func(_ string, w io.Writer) (export.Sink, error) {
			return export.NewJSONReporter(w), nil
		},
		Logs: io.Discard,
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cost-atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeCmd_FromConfig(t *testing.T) {
	// Given
	var profiles []string
	path := writeConfig(t, "sources:\n  stub:\n    profile: billing\nlog:\n  level: error\n")
	cmd := NewAnalyzeCmd(testDeps(t, &profiles))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--start", "2025-06-01", "--end", "2025-06-03", "--format", "json"})

	// When
	err := cmd.Execute()

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"billing"}, profiles)
	var report api.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 40.0, report.TotalCost)
	assert.Equal(t, "2025-06-01", report.Period.Start)
	assert.Equal(t, []api.Contributor{{Key: "compute", Cost: 30}, {Key: "storage", Cost: 10}}, report.TopContributors)
}

func TestAnalyzeCmd_SourcesFlagWithoutConfig(t *testing.T) {
	var profiles []string
	cmd := NewAnalyzeCmd(testDeps(t, &profiles))
	path := filepath.Join(t.TempDir(), "report.json")
	cmd.SetArgs([]string{"--sources", "STUB", "--start", "2025-06-01", "--end", "2025-06-03", "--output", path})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{""}, profiles)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_cost": 40`)
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "NoSources",
			args:     []string{"--start", "2025-06-01"},
			expected: "no cost sources enabled",
		},
		{
			name:     "InvalidStart",
			args:     []string{"--sources", "stub", "--start", "June"},
			expected: "invalid start date format",
		},
		{
			name:     "InvalidFilter",
			args:     []string{"--sources", "stub", "--filter", "SERVICE"},
			expected: "DIMENSION:value1,value2",
		},
		{
			name:     "MissingConfig",
			args:     []string{"--config", "/does/not/exist.yaml"},
			expected: "failed to read config file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var profiles []string
			cmd := NewAnalyzeCmd(testDeps(t, &profiles))
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tc.args)

			err := cmd.Execute()

			assert.ErrorContains(t, err, tc.expected)
		})
	}
}

func TestSourcesCmd(t *testing.T) {
	var profiles []string
	deps := testDeps(t, &profiles)
	require.NoError(t, deps.Registry.Register("azure", func(context.Context, string) (cost.Source, error) {
		return nil, nil
	}))
	path := writeConfig(t, "sources:\n  stub:\n    profile: billing\n  azure:\n    disabled: true\n")
	cmd := NewSourcesCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "azure        disabled")
	assert.Contains(t, out.String(), "stub         enabled (profile billing)")
	assert.Empty(t, profiles)
}
