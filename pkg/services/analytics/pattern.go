package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Classify labels variability and flags waste periods with default thresholds
func Classify(series domain.CostSeries, averageCost float64) domain.PatternResult {
	return NewEngine().Classify(series, averageCost)
}

// Classify labels variability and flags waste periods, using the anomaly model when it is ready
func (e *Engine) Classify(series domain.CostSeries, averageCost float64) domain.PatternResult {
	ordered := domain.CostSeries{Dimensions: series.Dimensions, Records: chronological(series.Records)}
	result := domain.PatternResult{Labels: []string{}, Method: domain.MethodThreshold}

	n := ordered.Len()
	if n == 0 {
		return result
	}

	var lo, hi decimal.Decimal
	nonZero, zeros := 0, 0
	for _, r := range ordered.Records {
		if r.Amount.IsZero() {
			zeros++
			continue
		}
		if nonZero == 0 {
			lo, hi = r.Amount, r.Amount
		}
		lo = decimal.Min(lo, r.Amount)
		hi = decimal.Max(hi, r.Amount)
		nonZero++
	}

	if nonZero > 0 {
		if hi.Sub(lo).InexactFloat64() > averageCost {
			result.Labels = append(result.Labels, domain.PatternHighVariability)
		} else {
			result.Labels = append(result.Labels, domain.PatternConsistent)
		}
	}
	if zeros*2 > n {
		result.Labels = append(result.Labels, domain.PatternManyZeroPeriods)
	}

	flags, method := e.wasteFlags(ordered, averageCost)
	result.Method = method
	for _, f := range flags {
		if f {
			result.WastePeriodCount++
		}
	}
	result.WasteRatio = float64(result.WastePeriodCount) / float64(n)
	return result
}

func (e *Engine) wasteFlags(series domain.CostSeries, averageCost float64) ([]bool, string) {
	if e.model != nil && e.model.Ready(series) {
		flags, err := e.model.Detect(series)
		if err == nil && len(flags) == series.Len() {
			return flags, "anomaly_model:" + e.model.Name()
		}
	}

	limit := e.thresholds.WasteMultiplier * averageCost
	flags := make([]bool, series.Len())
	for i, r := range series.Records {
		flags[i] = r.Cost() > limit
	}
	return flags, domain.MethodThreshold
}
