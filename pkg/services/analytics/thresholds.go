package analytics

import "github.com/de-tools/cost-atlas/pkg/models/domain"

// Default tuning for the engine. The values are empirical and carry no statistical validation.
const (
	IncreasingThresholdPct = 10.0
	DecreasingThresholdPct = -10.0
	DefaultWasteMultiplier = 1.5
	DefaultVarianceWeight  = 0.3
	ScoreFloor             = 0.0
	ScoreCeiling           = 1.0
	DefaultTopN            = 5
	DefaultCurrency        = "USD"
)

const (
	// MaxGroupKeys bounds how many dimensions form a breakdown key
	MaxGroupKeys = 2
	KeySeparator = "|"
	TotalKey     = "Total"
	UnknownKey   = "Unknown"
)

// Thresholds holds every tunable constant of the analysis
type Thresholds struct {
	IncreasingPct   float64 `mapstructure:"increasing_pct"`
	DecreasingPct   float64 `mapstructure:"decreasing_pct"`
	WasteMultiplier float64 `mapstructure:"waste_multiplier"`
	VarianceWeight  float64 `mapstructure:"variance_weight"`
	ScoreFloor      float64 `mapstructure:"score_floor"`
	ScoreCeiling    float64 `mapstructure:"score_ceiling"`
	TopN            int     `mapstructure:"top_n"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		IncreasingPct:   IncreasingThresholdPct,
		DecreasingPct:   DecreasingThresholdPct,
		WasteMultiplier: DefaultWasteMultiplier,
		VarianceWeight:  DefaultVarianceWeight,
		ScoreFloor:      ScoreFloor,
		ScoreCeiling:    ScoreCeiling,
		TopN:            DefaultTopN,
	}
}

// Direction classifies a growth rate
func (t Thresholds) Direction(growthRatePct float64) domain.TrendDirection {
	switch {
	case growthRatePct > t.IncreasingPct:
		return domain.TrendIncreasing
	case growthRatePct < t.DecreasingPct:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.IncreasingPct == 0 && t.DecreasingPct == 0 {
		t.IncreasingPct, t.DecreasingPct = d.IncreasingPct, d.DecreasingPct
	}
	if t.WasteMultiplier <= 0 {
		t.WasteMultiplier = d.WasteMultiplier
	}
	if t.VarianceWeight < 0 {
		t.VarianceWeight = d.VarianceWeight
	}
	if t.ScoreCeiling <= t.ScoreFloor {
		t.ScoreFloor, t.ScoreCeiling = d.ScoreFloor, d.ScoreCeiling
	}
	if t.TopN <= 0 {
		t.TopN = d.TopN
	}
	return t
}
