package api

import "time"

type TimePeriod struct {
	Start    string `json:"start"` // 2025-06-01
	End      string `json:"end"`
	Duration int    `json:"duration_days"`
}

type CostPoint struct {
	Date       string            `json:"date"`
	End        string            `json:"end"`
	Cost       float64           `json:"cost"`
	Currency   string            `json:"currency"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

type Contributor struct {
	Key  string  `json:"key"`
	Cost float64 `json:"cost"`
}

type EfficiencyMetrics struct {
	Score           float64 `json:"score"`
	WastePercentage float64 `json:"waste_percentage"`
	VarianceRatio   float64 `json:"variance_ratio"`
	MethodUsed      string  `json:"method_used"`
}

type SourceStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Records   int    `json:"records"`
	Skipped   int    `json:"skipped"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	ID                string             `json:"id"`
	Period            TimePeriod         `json:"period"`
	Dimensions        []string           `json:"dimensions"`
	Currency          string             `json:"currency"`
	TotalCost         float64            `json:"total_cost"`
	CostBreakdown     map[string]float64 `json:"cost_breakdown"`
	TopContributors   []Contributor      `json:"top_contributors"`
	CostTrends        []CostPoint        `json:"cost_trends"`
	TrendDirection    string             `json:"trend_direction"`
	GrowthRate        float64            `json:"growth_rate"`
	AverageCost       float64            `json:"average_cost"`
	TotalPeriods      int                `json:"total_periods"`
	PeakPeriods       []CostPoint        `json:"peak_periods"`
	LowPeriods        []CostPoint        `json:"low_periods"`
	Patterns          []string           `json:"patterns"`
	Insights          []string           `json:"insights"`
	EfficiencyMetrics EfficiencyMetrics  `json:"efficiency_metrics"`
	Sources           []SourceStatus     `json:"sources"`
	MissingSources    []string           `json:"missing_sources"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

type Source struct {
	Name string `json:"name"`
}

type CacheFlush struct {
	Source  string `json:"source,omitempty"`
	Entries int    `json:"entries"`
}
