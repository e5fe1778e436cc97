package analytics

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

func breakdownSeries() domain.CostSeries {
	return domain.CostSeries{
		Dimensions: []string{"service", "region", "usage_type"},
		Records: []domain.CostRecord{
			record(0, "10.10", "AmazonEC2", "us-east-1", "BoxUsage"),
			record(0, "2.25", "AmazonS3", "us-east-1", "Requests"),
			record(1, "5.05", "AmazonEC2", "eu-west-1", "BoxUsage"),
			record(1, "7.50", "AmazonEC2", "us-east-1", "EBS"),
			record(2, "0", "AmazonS3", "eu-west-1", "Storage"),
		},
	}
}

func TestAggregate_JoinsGroupKeys(t *testing.T) {
	// When
	b := Aggregate(breakdownSeries(), []string{"service", "region"})

	// Then
	got, ok := b.Get("AmazonEC2|us-east-1")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("17.60")), got.String())
	assert.Len(t, b.Entries, 4)
	assert.Equal(t, "AmazonEC2|us-east-1", b.Entries[0].Key)
}

func TestAggregate_BoundsGroupKeys(t *testing.T) {
	b := Aggregate(breakdownSeries(), []string{"SERVICE", "region", "usage_type"})

	_, ok := b.Get("AmazonEC2|us-east-1")
	assert.True(t, ok)
	for _, e := range b.Entries {
		assert.NotContains(t, e.Key, "BoxUsage")
	}
}

func TestAggregate_TotalKey(t *testing.T) {
	s := breakdownSeries()
	for _, groupBy := range [][]string{nil, {}, {"account"}} {
		b := Aggregate(s, groupBy)

		require.Len(t, b.Entries, 1)
		assert.Equal(t, TotalKey, b.Entries[0].Key)
		assert.True(t, b.Entries[0].Amount.Equal(decimal.RequireFromString("24.90")))
	}
}

func TestAggregate_SumMatchesTrendTotal(t *testing.T) {
	s := breakdownSeries()

	b := Aggregate(s, []string{"region"})
	trend := AnalyzeTrend(s)

	assert.InEpsilon(t, trend.TotalCost, b.Total().InexactFloat64(), 1e-9)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	s := breakdownSeries()
	want := Aggregate(s, []string{"service"})

	shuffled := s.Clone()
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled.Records), func(i, j int) {
		shuffled.Records[i], shuffled.Records[j] = shuffled.Records[j], shuffled.Records[i]
	})
	got := Aggregate(shuffled, []string{"service"})

	require.Len(t, got.Entries, len(want.Entries))
	for _, e := range want.Entries {
		amount, ok := got.Get(e.Key)
		require.True(t, ok, e.Key)
		assert.True(t, amount.Equal(e.Amount), e.Key)
	}
}

func TestBreakdown_Top(t *testing.T) {
	b := domain.Breakdown{Entries: []domain.BreakdownEntry{
		{Key: "a", Amount: decimal.NewFromInt(1)},
		{Key: "b", Amount: decimal.NewFromInt(5)},
		{Key: "c", Amount: decimal.NewFromInt(5)},
		{Key: "d", Amount: decimal.NewFromInt(3)},
	}}

	top := b.Top(3)

	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Key)
	assert.Equal(t, "c", top[1].Key)
	assert.Equal(t, "d", top[2].Key)
	assert.Len(t, b.Top(0), 4)
	assert.Equal(t, "a", b.Entries[0].Key, "Top must not reorder the breakdown")
}

func TestAggregate_Empty(t *testing.T) {
	b := Aggregate(domain.CostSeries{}, []string{"service"})

	assert.Empty(t, b.Entries)
	assert.True(t, b.Total().IsZero())
}
