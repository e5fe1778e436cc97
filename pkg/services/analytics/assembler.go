package analytics

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Engine runs the analysis pipeline. It holds configuration only and is safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	model      AnomalyModel
	now        func() time.Time
}

type Option func(*Engine)

func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t.withDefaults()
	}
}

// WithAnomalyModel replaces the waste heuristic whenever the model is ready for a series
func WithAnomalyModel(m AnomalyModel) Option {
	return func(e *Engine) {
		e.model = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// SourceResult is the outcome of fetching and normalizing one source
type SourceResult struct {
	Source string
	Series domain.CostSeries
	Err    error
}

// Assemble builds the composite report for a single series
func (e *Engine) Assemble(series domain.CostSeries, groupBy []string) *domain.AnalysisReport {
	return e.assemble(series.Clone(), groupBy, nil)
}

// AssembleSources merges every available source into one series and reports the failed ones
// as missing. A report is returned even when no source is available.
func (e *Engine) AssembleSources(results []SourceResult, groupBy []string) *domain.AnalysisReport {
	var (
		dimensions []string
		statuses   = make([]domain.SourceStatus, 0, len(results))
	)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, d := range r.Series.Dimensions {
			if !slices.Contains(dimensions, d) {
				dimensions = append(dimensions, d)
			}
		}
	}

	merged := domain.CostSeries{Dimensions: dimensions}
	for _, r := range results {
		status := domain.SourceStatus{Name: r.Source}
		if r.Err != nil {
			status.ErrorKind = errorKind(r.Err)
			status.Error = r.Err.Error()
			statuses = append(statuses, status)
			continue
		}
		status.Available = true
		status.Records = r.Series.Len()
		status.Skipped = r.Series.Skipped
		statuses = append(statuses, status)

		merged.Skipped += r.Series.Skipped
		for _, rec := range r.Series.Records {
			rec.DimensionKeys = alignKeys(rec.DimensionKeys, r.Series.Dimensions, dimensions)
			merged.Records = append(merged.Records, rec)
		}
	}
	merged.Records = chronological(merged.Records)

	return e.assemble(merged, groupBy, statuses)
}

func (e *Engine) assemble(series domain.CostSeries, groupBy []string, statuses []domain.SourceStatus) *domain.AnalysisReport {
	series.Records = chronological(series.Records)

	breakdown := Aggregate(series, groupBy)
	trend := e.AnalyzeTrend(series)
	patterns := e.Classify(series, trend.AverageCost)
	efficiency := e.Score(trend.AverageCost, trend.StdDev, patterns.WasteRatio)
	efficiency.Method = patterns.Method

	report := &domain.AnalysisReport{
		ID:              uuid.NewString(),
		Period:          periodOf(series),
		Dimensions:      ResolvedGroupBy(series.Dimensions, groupBy),
		Currency:        DefaultCurrency,
		TotalCost:       breakdown.Total().InexactFloat64(),
		Breakdown:       breakdown,
		TopContributors: breakdown.Top(e.thresholds.TopN),
		CostTrends:      series.Records,
		TrendDimensions: series.Dimensions,
		Trend:           trend,
		Patterns:        patterns,
		Efficiency:      efficiency,
		Sources:         statuses,
		MissingSources:  []string{},
		GeneratedAt:     e.now().UTC(),
	}
	if report.Sources == nil {
		report.Sources = []domain.SourceStatus{}
	}
	for _, s := range statuses {
		if !s.Available {
			report.MissingSources = append(report.MissingSources, s.Name)
		}
	}

	currencies := currenciesOf(series)
	if len(currencies) > 0 {
		report.Currency = currencies[0]
	}
	report.Insights = insights(report, currencies)
	return report
}

func insights(r *domain.AnalysisReport, currencies []string) []string {
	out := []string{}
	trend := r.Trend
	money := func(v float64, prec int) string {
		if r.Currency == DefaultCurrency {
			return fmt.Sprintf("$%.*f", prec, v)
		}
		return fmt.Sprintf("%.*f %s", prec, v, r.Currency)
	}

	if trend.TotalCost > 0 {
		out = append(out,
			fmt.Sprintf("Total cost over %d periods: %s", trend.TotalPeriods, money(trend.TotalCost, 2)),
			fmt.Sprintf("Average cost per period: %s", money(trend.AverageCost, 4)),
		)
		if trend.Direction != domain.TrendStable {
			out = append(out, fmt.Sprintf("Cost trend is %s (%.1f%% change)", trend.Direction, trend.GrowthRatePct))
		}
		if len(trend.PeakPeriods) > 0 {
			peak := trend.PeakPeriods[0]
			out = append(out, fmt.Sprintf("Peak cost period: %s (%s)", peak.PeriodStart.Format(time.DateOnly), money(peak.Cost(), 4)))
		}
	} else if trend.TotalPeriods > 0 {
		out = append(out, fmt.Sprintf("No cost recorded over %d periods.", trend.TotalPeriods))
	}

	if r.TotalCost > 0 && len(r.TopContributors) > 0 {
		top := r.TopContributors[0]
		out = append(out, fmt.Sprintf("Top group %s accounts for %.1f%% of total cost.", top.Key, top.Amount.InexactFloat64()/r.TotalCost*100))
		if len(r.Breakdown.Entries) > 1 {
			var top3 float64
			for _, entry := range r.Breakdown.Top(3) {
				top3 += entry.Amount.InexactFloat64()
			}
			out = append(out, fmt.Sprintf("Top 3 groups account for %.1f%% of total cost.", top3/r.TotalCost*100))
		}
	}

	if len(currencies) > 1 {
		out = append(out, fmt.Sprintf("Records span multiple currencies (%s); amounts are summed without conversion.", strings.Join(currencies, ", ")))
	}
	if len(r.MissingSources) > 0 {
		out = append(out, "Cost data unavailable for: "+strings.Join(r.MissingSources, ", "))
	}
	return out
}

func periodOf(series domain.CostSeries) domain.TimePeriod {
	var p domain.TimePeriod
	for i, r := range series.Records {
		if i == 0 || r.PeriodStart.Before(p.Start) {
			p.Start = r.PeriodStart
		}
		if i == 0 || r.PeriodEnd.After(p.End) {
			p.End = r.PeriodEnd
		}
	}
	return p
}

func currenciesOf(series domain.CostSeries) []string {
	var out []string
	for _, r := range series.Records {
		if r.Currency != "" && !slices.Contains(out, r.Currency) {
			out = append(out, r.Currency)
		}
	}
	return out
}

// alignKeys maps a key tuple from its own dimension names onto target
func alignKeys(keys, from, target []string) []string {
	out := make([]string, len(target))
	for i, name := range target {
		out[i] = UnknownKey
		if j := slices.Index(from, name); j >= 0 && j < len(keys) {
			out[i] = keys[j]
		}
	}
	return out
}

func errorKind(err error) string {
	var ne *domain.NormalizationError
	if errors.As(err, &ne) {
		return domain.SourceErrorInvalidData
	}
	return domain.SourceErrorUnavailable
}
