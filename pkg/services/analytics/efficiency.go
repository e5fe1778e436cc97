package analytics

import "github.com/de-tools/cost-atlas/pkg/models/domain"

// Score combines waste and variance into an efficiency figure with default thresholds
func Score(averageCost, stddev, wasteRatio float64) domain.EfficiencyResult {
	return NewEngine().Score(averageCost, stddev, wasteRatio)
}

// Score is a heuristic composite, not a statistical measure
func (e *Engine) Score(averageCost, stddev, wasteRatio float64) domain.EfficiencyResult {
	averageCost, stddev, wasteRatio = finite(averageCost), finite(stddev), finite(wasteRatio)

	var varianceRatio float64
	if averageCost > 0 {
		varianceRatio = stddev / averageCost
	}

	t := e.thresholds
	score := clamp(1-(wasteRatio+varianceRatio*t.VarianceWeight), t.ScoreFloor, t.ScoreCeiling)
	return domain.EfficiencyResult{
		Score:           score,
		VarianceRatio:   varianceRatio,
		WastePercentage: wasteRatio * 100,
		Method:          domain.MethodThreshold,
	}
}
