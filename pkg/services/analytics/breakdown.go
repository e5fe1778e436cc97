package analytics

import (
	"slices"
	"strings"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Aggregate sums record amounts per joined dimension key.
// With no resolvable groupBy dimension every record lands under TotalKey.
func Aggregate(series domain.CostSeries, groupBy []string) domain.Breakdown {
	positions := resolveGroupBy(series.Dimensions, groupBy)

	var b domain.Breakdown
	index := make(map[string]int)
	for _, r := range series.Records {
		key := groupKey(r, positions)
		if i, ok := index[key]; ok {
			b.Entries[i].Amount = b.Entries[i].Amount.Add(r.Amount)
			continue
		}
		index[key] = len(b.Entries)
		b.Entries = append(b.Entries, domain.BreakdownEntry{Key: key, Amount: r.Amount})
	}
	return b
}

// ResolvedGroupBy returns the groupBy names that match a series dimension, at most MaxGroupKeys
func ResolvedGroupBy(dimensions, groupBy []string) []string {
	positions := resolveGroupBy(dimensions, groupBy)
	names := make([]string, len(positions))
	for i, p := range positions {
		names[i] = dimensions[p]
	}
	return names
}

func resolveGroupBy(dimensions, groupBy []string) []int {
	var positions []int
	for _, name := range groupBy {
		if len(positions) == MaxGroupKeys {
			break
		}
		for i, dim := range dimensions {
			if !strings.EqualFold(dim, strings.TrimSpace(name)) {
				continue
			}
			if !slices.Contains(positions, i) {
				positions = append(positions, i)
			}
			break
		}
	}
	return positions
}

func groupKey(r domain.CostRecord, positions []int) string {
	if len(positions) == 0 {
		return TotalKey
	}
	parts := make([]string, len(positions))
	for i, p := range positions {
		if p < len(r.DimensionKeys) {
			parts[i] = r.DimensionKeys[p]
		} else {
			parts[i] = UnknownKey
		}
	}
	return strings.Join(parts, KeySeparator)
}
