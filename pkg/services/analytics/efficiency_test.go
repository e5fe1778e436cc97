package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		avg, sd, waste float64
		score          float64
		varianceRatio  float64
	}{
		{name: "flat", avg: 10, sd: 0, waste: 0, score: 1, varianceRatio: 0},
		{name: "all zero", avg: 0, sd: 0, waste: 0, score: 1, varianceRatio: 0},
		{name: "variance and waste", avg: 10, sd: 5, waste: 0.25, score: 0.6, varianceRatio: 0.5},
		{name: "clamped low", avg: 1, sd: 10, waste: 0.9, score: 0, varianceRatio: 10},
		{name: "non-finite inputs", avg: math.NaN(), sd: math.Inf(1), waste: math.NaN(), score: 1, varianceRatio: 0},
		{name: "negative average", avg: -4, sd: 2, waste: 0, score: 1, varianceRatio: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Score(tc.avg, tc.sd, tc.waste)

			assert.InDelta(t, tc.score, result.Score, 1e-9)
			assert.InDelta(t, tc.varianceRatio, result.VarianceRatio, 1e-9)
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 1.0)
		})
	}
}

func TestScore_ConfigurableWeight(t *testing.T) {
	e := NewEngine(WithThresholds(Thresholds{VarianceWeight: 1}))

	result := e.Score(10, 5, 0.1)

	assert.InDelta(t, 0.4, result.Score, 1e-9)
	assert.InDelta(t, 10, result.WastePercentage, 1e-9)
}
