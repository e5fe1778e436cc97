package cost

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

func sig(sources ...string) QuerySignature {
	return SignatureOf(sources, testQuery())
}

func TestQuerySignature_Normalizes(t *testing.T) {
	a := QuerySignature{
		Sources:    []string{"AWS", "azure"},
		Start:      testStart,
		End:        testEnd,
		Dimensions: []string{"SERVICE", "REGION"},
		Filter:     map[string][]string{"Service": {"S3", "EC2"}},
	}
	b := QuerySignature{
		Sources:     []string{"azure", "aws", "aws"},
		Start:       testStart,
		End:         testEnd,
		Granularity: domain.GranularityDaily,
		Dimensions:  []string{" SERVICE", "REGION", "SERVICE"},
		Filter:      map[string][]string{"SERVICE": {"EC2", "S3", "EC2"}},
	}

	assert.Equal(t, a.Key(), b.Key())

	c := b
	c.End = testEnd.AddDate(0, 0, 1)
	assert.NotEqual(t, b.Key(), c.Key())
}

func TestQuerySignature_DistinguishesReportShape(t *testing.T) {
	base := QuerySignature{
		Sources:    []string{"aws"},
		Start:      testStart,
		End:        testEnd,
		Dimensions: []string{"SERVICE", "REGION"},
		Filter:     map[string][]string{"SERVICE": {"AmazonEC2"}},
	}

	reordered := base
	reordered.Dimensions = []string{"REGION", "SERVICE"}
	assert.NotEqual(t, base.Key(), reordered.Key())

	otherCase := base
	otherCase.Filter = map[string][]string{"SERVICE": {"amazonec2"}}
	assert.NotEqual(t, base.Key(), otherCase.Key())
}

func TestCache_HitAndInvalidate(t *testing.T) {
	// Given
	c := NewCache(4, 0)
	report := &domain.AnalysisReport{ID: "r1"}

	// When
	require.True(t, c.Put(sig("aws"), report))

	// Then
	got, ok := c.Get(sig("aws"))
	require.True(t, ok)
	assert.Same(t, report, got)

	c.Invalidate(sig("aws"))
	_, ok = c.Get(sig("aws"))
	assert.False(t, ok)
}

func TestCache_SkipsPartialReports(t *testing.T) {
	c := NewCache(4, 0)

	assert.False(t, c.Put(sig("aws"), &domain.AnalysisReport{MissingSources: []string{"aws"}}))
	assert.False(t, c.Put(sig("aws"), nil))
	assert.Zero(t, c.Len())
}

func TestCache_InvalidateSource(t *testing.T) {
	c := NewCache(8, 0)
	c.Put(sig("aws"), &domain.AnalysisReport{ID: "a"})
	c.Put(sig("aws", "azure"), &domain.AnalysisReport{ID: "b"})
	c.Put(sig("azure"), &domain.AnalysisReport{ID: "c"})

	n := c.InvalidateSource("AWS")

	assert.Equal(t, 2, n)
	_, ok := c.Get(sig("azure"))
	assert.True(t, ok)
	_, ok = c.Get(sig("aws", "azure"))
	assert.False(t, ok)
	assert.Zero(t, c.InvalidateSource("aws"))
}

func TestCache_TTL(t *testing.T) {
	c := NewCache(4, time.Minute)
	now := testStart
	c.now = func() time.Time { return now }
	c.Put(sig("aws"), &domain.AnalysisReport{ID: "r"})

	_, ok := c.Get(sig("aws"))
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(sig("aws"))
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, 0)
	for i := 0; i < 3; i++ {
		c.Put(sig(fmt.Sprintf("s%d", i)), &domain.AnalysisReport{})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(sig("s0"))
	assert.False(t, ok)
	assert.Zero(t, c.InvalidateSource("s0"))
}

func TestCache_Purge(t *testing.T) {
	c := NewCache(0, 0)
	c.Put(sig("aws"), &domain.AnalysisReport{})

	c.Purge()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.InvalidateSource("aws"))
	require.True(t, c.Put(sig("aws"), &domain.AnalysisReport{}))
	assert.Equal(t, 1, c.Len())
}
