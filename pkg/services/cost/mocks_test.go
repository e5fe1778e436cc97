package cost

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

type mockSource struct {
	mock.Mock
	name string
	dims []string
}

func newMockSource(name string, dims ...string) *mockSource {
	return &mockSource{name: name, dims: dims}
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Dimensions(_ Query) []string {
	return m.dims
}

func (m *mockSource) Fetch(ctx context.Context, q Query) ([]domain.RawRow, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]domain.RawRow)
	return rows, args.Error(1)
}

var (
	testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
)

func testQuery() Query {
	return Query{Start: testStart, End: testEnd, Granularity: domain.GranularityDaily}
}

func rows(service string, amounts ...float64) []domain.RawRow {
	out := make([]domain.RawRow, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, domain.RawRow{
			domain.FieldStart:  testStart.AddDate(0, 0, i).Format(time.DateOnly),
			domain.FieldAmount: a,
			"service":          service,
		})
	}
	return out
}

// fastFetcher retries quickly so tests stay short
func fastFetcher(metrics *Metrics) *Fetcher {
	return NewFetcher(FetcherConfig{
		Workers:         2,
		Timeout:         time.Second,
		MaxRetryElapsed: 200 * time.Millisecond,
		InitialInterval: 5 * time.Millisecond,
	}, metrics)
}
