package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Pattern labels emitted by the classifier
const (
	PatternHighVariability = "High cost variability"
	PatternConsistent      = "Consistent cost pattern"
	PatternManyZeroPeriods = "Many zero-cost periods"
)

// MethodThreshold names the mean-multiple waste heuristic
const MethodThreshold = "threshold_heuristic"

// TimePeriod represents a time range for the report
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

// BreakdownEntry is one accumulated dimension key
type BreakdownEntry struct {
	Key    string          // AmazonEC2|us-east-1
	Amount decimal.Decimal // 120.5
}

// Breakdown holds total cost per joined dimension key. Entries keep first-seen order.
type Breakdown struct {
	Entries []BreakdownEntry
}

// Total returns the sum of all entries
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Get returns the amount accumulated for key
func (b Breakdown) Get(key string) (decimal.Decimal, bool) {
	for _, e := range b.Entries {
		if e.Key == key {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

// Top returns the n largest entries, ties kept in first-seen order. n <= 0 returns all of them.
func (b Breakdown) Top(n int) []BreakdownEntry {
	sorted := slices.Clone(b.Entries)
	slices.SortStableFunc(sorted, func(x, y BreakdownEntry) int {
		return y.Amount.Cmp(x.Amount)
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TrendResult summarizes the chronological shape of a series
type TrendResult struct {
	TotalPeriods  int
	TotalCost     float64
	AverageCost   float64
	StdDev        float64
	MinCost       float64
	MaxCost       float64
	Direction     TrendDirection
	GrowthRatePct float64
	PeakPeriods   []CostRecord
	LowPeriods    []CostRecord
}

// PatternResult carries variability labels and the waste ratio
type PatternResult struct {
	Labels           []string
	WasteRatio       float64
	WastePeriodCount int
	Method           string // threshold_heuristic | anomaly_model:<name>
}

type EfficiencyResult struct {
	Score           float64
	VarianceRatio   float64
	WastePercentage float64
	Method          string
}

// Error kinds recorded for missing sources
const (
	SourceErrorUnavailable = "unavailable"
	SourceErrorInvalidData = "invalid_data"
)

// SourceStatus tells whether a source contributed to the report
type SourceStatus struct {
	Name      string
	Available bool
	Records   int
	Skipped   int
	ErrorKind string
	Error     string
}

// AnalysisReport is the composite engine output handed to report sinks
type AnalysisReport struct {
	ID              string
	Period          TimePeriod
	Dimensions      []string
	Currency        string
	TotalCost       float64
	Breakdown       Breakdown
	TopContributors []BreakdownEntry
	CostTrends      []CostRecord
	TrendDimensions []string // names of the CostTrends key positions
	Trend           TrendResult
	Patterns        PatternResult
	Efficiency      EfficiencyResult
	Insights        []string
	Sources         []SourceStatus
	MissingSources  []string
	GeneratedAt     time.Time
}

// Complete reports whether every queried source contributed data
func (r *AnalysisReport) Complete() bool {
	return len(r.MissingSources) == 0
}
