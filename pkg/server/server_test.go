package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/analytics"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

type fixedSource struct {
	name string
	rows []domain.RawRow
}

func (s fixedSource) Name() string { return s.name }

func (s fixedSource) Dimensions(cost.Query) []string { return []string{"SERVICE"} }

func (s fixedSource) Fetch(context.Context, cost.Query) ([]domain.RawRow, error) {
	return s.rows, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := cost.NewMetrics(reg)
	src := fixedSource{name: "aws", rows: []domain.RawRow{
		{"start": "2025-06-01", "end": "2025-06-02", "amount": "10.5", "currency": "USD", "SERVICE": "AmazonEC2"},
		{"start": "2025-06-02", "end": "2025-06-03", "amount": "4.5", "currency": "USD", "SERVICE": "AmazonS3"},
	}}
	svc, err := cost.NewService([]cost.Source{src}, analytics.NewEngine(), nil, cost.NewCache(4, time.Minute), metrics)
	require.NoError(t, err)

	router := ConfigureRouter(zerolog.Nop(), Dependencies{Service: svc, Gatherer: reg})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebAPI_Endpoints(t *testing.T) {
	testServer := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "Healthz",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Equal(t, "ok", string(body))
			},
		},
		{
			name:           "ListSources",
			method:         http.MethodGet,
			path:           "/api/v1/sources",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []api.Source
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, []api.Source{{Name: "aws"}}, got)
			},
		},
		{
			name:           "GetReport",
			method:         http.MethodGet,
			path:           "/api/v1/reports?sources=aws&start=2025-06-01&end=2025-06-03",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.Report
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, 15.0, got.TotalCost)
				assert.Equal(t, "USD", got.Currency)
				assert.Equal(t, map[string]float64{"AmazonEC2": 10.5, "AmazonS3": 4.5}, got.CostBreakdown)
				assert.Empty(t, got.MissingSources)
			},
		},
		{
			name:           "GetReport_InvalidStartDate",
			method:         http.MethodGet,
			path:           "/api/v1/reports?start=invalid-date",
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "invalid start date format")
			},
		},
		{
			name:           "FlushCache",
			method:         http.MethodDelete,
			path:           "/api/v1/reports/cache",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got api.CacheFlush
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, 1, got.Entries)
			},
		},
		{
			name:           "Metrics",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), `cost_atlas_source_fetches_total{outcome="ok",source="aws"} 1`)
				assert.Contains(t, string(body), `cost_atlas_reports_total{status="complete"} 1`)
			},
		},
	}

	// cases share the server and run in order: the report fills the cache that FlushCache empties
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")
			tc.check(t, body)
		})
	}
}

func TestNewWebAPI_DefaultShutdownTimeout(t *testing.T) {
	w := NewWebAPI(zerolog.Nop(), Config{Addr: ":0"})

	assert.Equal(t, defaultShutdownTimeout, w.shutdownTimeout)
	assert.Equal(t, ":0", w.server.Addr)
}
