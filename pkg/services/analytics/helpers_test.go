package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

var day0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// dailySeries builds one record per amount starting at day0
func dailySeries(amounts ...float64) domain.CostSeries {
	s := domain.CostSeries{Dimensions: []string{"service", "region"}}
	for i, a := range amounts {
		start := day0.AddDate(0, 0, i)
		s.Records = append(s.Records, domain.CostRecord{
			PeriodStart:   start,
			PeriodEnd:     start.AddDate(0, 0, 1),
			Amount:        decimal.NewFromFloat(a),
			Currency:      "USD",
			DimensionKeys: []string{"svc", "us-east-1"},
		})
	}
	return s
}

func record(day int, amount string, keys ...string) domain.CostRecord {
	start := day0.AddDate(0, 0, day)
	return domain.CostRecord{
		PeriodStart:   start,
		PeriodEnd:     start.AddDate(0, 0, 1),
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		DimensionKeys: keys,
	}
}
