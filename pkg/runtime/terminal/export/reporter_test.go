package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/api"
)

func sampleReport() *api.Report {
	return &api.Report{
		ID:         "r-1",
		Period:     api.TimePeriod{Start: "2025-06-01", End: "2025-06-08", Duration: 7},
		Dimensions: []string{"SERVICE", "REGION"},
		Currency:   "USD",
		TotalCost:  100,
		TopContributors: []api.Contributor{
			{Key: "AmazonEC2|us-east-1", Cost: 75},
			{Key: "AmazonS3|us-east-1", Cost: 25},
		},
		CostTrends: []api.CostPoint{
			{Date: "2025-06-01", Cost: 100, Currency: "USD", Dimensions: map[string]string{"SERVICE": "AmazonEC2", "REGION": "us-east-1"}},
		},
		TrendDirection: "stable",
		Insights:       []string{"Total cost: $100.00"},
		GeneratedAt:    time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestReporter_Handle_RendersTables(t *testing.T) {
	// Given
	var buf bytes.Buffer
	r := NewReporter(&buf)

	// When
	err := r.Handle(context.Background(), sampleReport())

	// Then
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Total Amount: USD 100.00")
	assert.Contains(t, out, "AmazonEC2|us-east-1")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "* Total cost: $100.00")
}

func TestJSONReporter_Handle(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONReporter(&buf).Handle(context.Background(), sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "r-1", decoded["id"])
	assert.Equal(t, 100.0, decoded["total_cost"])
	assert.Contains(t, decoded, "efficiency_metrics")
}

type failingSink struct{}

func (failingSink) Handle(context.Context, *api.Report) error {
	return errors.New("disk full")
}

func TestMulti_StopsAtFirstFailure(t *testing.T) {
	var buf bytes.Buffer
	m := Multi{failingSink{}, NewJSONReporter(&buf)}

	err := m.Handle(context.Background(), sampleReport())

	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, buf.Len())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
