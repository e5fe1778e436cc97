package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// AnalyzeTrend computes totals, extremes and growth with default thresholds
func AnalyzeTrend(series domain.CostSeries) domain.TrendResult {
	return NewEngine().AnalyzeTrend(series)
}

// AnalyzeTrend summarizes the series in chronological order. The input is not reordered.
func (e *Engine) AnalyzeTrend(series domain.CostSeries) domain.TrendResult {
	records := chronological(series.Records)
	result := domain.TrendResult{
		TotalPeriods: len(records),
		Direction:    domain.TrendStable,
		PeakPeriods:  []domain.CostRecord{},
		LowPeriods:   []domain.CostRecord{},
	}
	if len(records) == 0 {
		return result
	}

	total := decimal.Zero
	lo, hi := records[0].Amount, records[0].Amount
	for _, r := range records {
		total = total.Add(r.Amount)
		lo = decimal.Min(lo, r.Amount)
		hi = decimal.Max(hi, r.Amount)
	}

	values := costs(records)
	result.TotalCost = total.InexactFloat64()
	result.AverageCost = result.TotalCost / float64(len(records))
	result.StdDev = stdDev(values, result.AverageCost)
	result.MinCost = lo.InexactFloat64()
	result.MaxCost = hi.InexactFloat64()

	for _, r := range records {
		if r.Amount.Equal(hi) && hi.IsPositive() {
			result.PeakPeriods = append(result.PeakPeriods, r)
		}
		if r.Amount.Equal(lo) {
			result.LowPeriods = append(result.LowPeriods, r)
		}
	}

	result.GrowthRatePct = growthRate(values)
	result.Direction = e.thresholds.Direction(result.GrowthRatePct)
	return result
}

// growthRate compares the average of the second half against the first half, split at len/2
func growthRate(values []float64) float64 {
	mid := len(values) / 2
	first, second := values[:mid], values[mid:]
	if len(first) == 0 || len(second) == 0 {
		return 0
	}
	firstAvg := mean(first)
	if firstAvg == 0 {
		return 0
	}
	return finite((mean(second) - firstAvg) / firstAvg * 100)
}
