package adapters

import (
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func MapTimePeriodDomainToApi(p domain.TimePeriod) api.TimePeriod {
	res := api.TimePeriod{
		Start: formatDate(p.Start),
		End:   formatDate(p.End),
	}
	if !p.Start.IsZero() && p.End.After(p.Start) {
		res.Duration = int(p.End.Sub(p.Start).Hours() / 24)
	}
	return res
}

// MapCostRecordDomainToApi names the key tuple with the series dimensions
func MapCostRecordDomainToApi(r domain.CostRecord, dimensions []string) api.CostPoint {
	point := api.CostPoint{
		Date:     formatDate(r.PeriodStart),
		End:      formatDate(r.PeriodEnd),
		Cost:     r.Cost(),
		Currency: r.Currency,
	}
	if len(dimensions) > 0 && len(r.DimensionKeys) > 0 {
		point.Dimensions = make(map[string]string, len(dimensions))
		for i, name := range dimensions {
			if i < len(r.DimensionKeys) {
				point.Dimensions[name] = r.DimensionKeys[i]
			}
		}
	}
	return point
}

func MapCostRecordsDomainToApi(records []domain.CostRecord, dimensions []string) []api.CostPoint {
	res := make([]api.CostPoint, 0, len(records))
	for _, r := range records {
		res = append(res, MapCostRecordDomainToApi(r, dimensions))
	}
	return res
}

func MapBreakdownDomainToApi(b domain.Breakdown) map[string]float64 {
	res := make(map[string]float64, len(b.Entries))
	for _, e := range b.Entries {
		res[e.Key] = e.Amount.InexactFloat64()
	}
	return res
}

func MapContributorsDomainToApi(entries []domain.BreakdownEntry) []api.Contributor {
	res := make([]api.Contributor, 0, len(entries))
	for _, e := range entries {
		res = append(res, api.Contributor{Key: e.Key, Cost: e.Amount.InexactFloat64()})
	}
	return res
}
