package adapters

import (
	"slices"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

func MapSourceStatusDomainToApi(s domain.SourceStatus) api.SourceStatus {
	return api.SourceStatus{
		Name:      s.Name,
		Available: s.Available,
		Records:   s.Records,
		Skipped:   s.Skipped,
		ErrorKind: s.ErrorKind,
		Error:     s.Error,
	}
}

func MapEfficiencyDomainToApi(e domain.EfficiencyResult) api.EfficiencyMetrics {
	return api.EfficiencyMetrics{
		Score:           e.Score,
		WastePercentage: e.WastePercentage,
		VarianceRatio:   e.VarianceRatio,
		MethodUsed:      e.Method,
	}
}

// MapReportDomainToApi flattens the report into its JSON form. Slices are never nil.
func MapReportDomainToApi(r *domain.AnalysisReport) api.Report {
	dims := r.TrendDimensions
	res := api.Report{
		ID:                r.ID,
		Period:            MapTimePeriodDomainToApi(r.Period),
		Dimensions:        nonNil(r.Dimensions),
		Currency:          r.Currency,
		TotalCost:         r.TotalCost,
		CostBreakdown:     MapBreakdownDomainToApi(r.Breakdown),
		TopContributors:   MapContributorsDomainToApi(r.TopContributors),
		CostTrends:        MapCostRecordsDomainToApi(r.CostTrends, dims),
		TrendDirection:    string(r.Trend.Direction),
		GrowthRate:        r.Trend.GrowthRatePct,
		AverageCost:       r.Trend.AverageCost,
		TotalPeriods:      r.Trend.TotalPeriods,
		PeakPeriods:       MapCostRecordsDomainToApi(r.Trend.PeakPeriods, dims),
		LowPeriods:        MapCostRecordsDomainToApi(r.Trend.LowPeriods, dims),
		Patterns:          nonNil(r.Patterns.Labels),
		Insights:          nonNil(r.Insights),
		EfficiencyMetrics: MapEfficiencyDomainToApi(r.Efficiency),
		Sources:           make([]api.SourceStatus, 0, len(r.Sources)),
		MissingSources:    nonNil(r.MissingSources),
		GeneratedAt:       r.GeneratedAt,
	}
	if res.TrendDirection == "" {
		res.TrendDirection = string(domain.TrendStable)
	}
	for _, s := range r.Sources {
		res.Sources = append(res.Sources, MapSourceStatusDomainToApi(s))
	}
	return res
}

func MapSourceNamesToApi(names []string) []api.Source {
	res := make([]api.Source, 0, len(names))
	for _, n := range names {
		res = append(res, api.Source{Name: n})
	}
	return res
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
