package analytics

import (
	"errors"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

var ErrInsufficientHistory = errors.New("not enough history for anomaly model")

// AnomalyModel flags anomalous periods. Detect must return one flag per record of the
// chronologically ordered series it receives.
type AnomalyModel interface {
	Name() string
	Ready(series domain.CostSeries) bool
	Detect(series domain.CostSeries) ([]bool, error)
}

// SeasonalBaseline compares every period with the other periods in the same season slot.
// A period is flagged when it exceeds the slot baseline by Sigma deviations and by
// Tolerance of the baseline itself.
type SeasonalBaseline struct {
	SeasonLength int     // 7 for weekday slots of a daily series
	MinSeasons   int     // 2
	Sigma        float64 // 2
	Tolerance    float64 // 0.5
}

func NewSeasonalBaseline() *SeasonalBaseline {
	return &SeasonalBaseline{SeasonLength: 7, MinSeasons: 2, Sigma: 2, Tolerance: 0.5}
}

func (m *SeasonalBaseline) Name() string {
	return "seasonal_baseline"
}

func (m *SeasonalBaseline) Ready(series domain.CostSeries) bool {
	if m.SeasonLength <= 0 || series.Len() < m.SeasonLength*max(m.MinSeasons, 1) {
		return false
	}
	values := costs(series.Records)
	return stdDev(values, mean(values)) > 0
}

func (m *SeasonalBaseline) Detect(series domain.CostSeries) ([]bool, error) {
	if !m.Ready(series) {
		return nil, ErrInsufficientHistory
	}

	values := costs(series.Records)
	slots := make([][]int, m.SeasonLength)
	for i := range values {
		slot := i % m.SeasonLength
		slots[slot] = append(slots[slot], i)
	}

	flags := make([]bool, len(values))
	for _, members := range slots {
		for _, i := range members {
			others := make([]float64, 0, len(members)-1)
			for _, j := range members {
				if j != i {
					others = append(others, values[j])
				}
			}
			if len(others) == 0 {
				continue
			}
			baseline := mean(others)
			margin := max(m.Sigma*stdDev(others, baseline), m.Tolerance*baseline)
			flags[i] = values[i] > baseline+margin
		}
	}
	return flags, nil
}
