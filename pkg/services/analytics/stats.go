package analytics

import (
	"math"
	"slices"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation around m
func stdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func costs(records []domain.CostRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Cost()
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// chronological returns a copy of the records stably sorted by period start
func chronological(records []domain.CostRecord) []domain.CostRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b domain.CostRecord) int {
		return a.PeriodStart.Compare(b.PeriodStart)
	})
	return out
}
