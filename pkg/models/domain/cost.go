package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is the time bucket size of cost records
type Granularity string

const (
	GranularityDaily   Granularity = "DAILY"
	GranularityMonthly Granularity = "MONTHLY"
	GranularityHourly  Granularity = "HOURLY"
	GranularityNone    Granularity = "NONE"
)

// ParseGranularity maps a case-insensitive name to a Granularity. Empty input means DAILY.
func ParseGranularity(s string) (Granularity, bool) {
	switch g := Granularity(strings.ToUpper(strings.TrimSpace(s))); g {
	case "":
		return GranularityDaily, true
	case GranularityDaily, GranularityMonthly, GranularityHourly, GranularityNone:
		return g, true
	default:
		return "", false
	}
}

// Next returns the end of the bucket that starts at t
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case GranularityMonthly:
		return t.AddDate(0, 1, 0)
	case GranularityHourly:
		return t.Add(time.Hour)
	case GranularityNone:
		return t
	default:
		return t.AddDate(0, 0, 1)
	}
}

// RawRow is a provider-shaped row as returned by a cost record source.
// Reserved keys are listed below, every other key holds a dimension value.
type RawRow map[string]any

const (
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldAmount   = "amount"
	FieldCurrency = "currency"
)

// CostRecord is a single dated cost amount. It is not modified after normalization.
type CostRecord struct {
	PeriodStart   time.Time       // 2025-06-01
	PeriodEnd     time.Time       // 2025-06-02
	Amount        decimal.Decimal // 12.3400
	Currency      string          // USD
	DimensionKeys []string        // ["AmazonEC2", "us-east-1"]
}

// Cost returns the amount as a float for statistics
func (r CostRecord) Cost() float64 {
	return r.Amount.InexactFloat64()
}

// Keys returns a copy of the dimension key tuple
func (r CostRecord) Keys() []string {
	return append([]string(nil), r.DimensionKeys...)
}

// CostSeries is the chronologically ordered input of one analysis run
type CostSeries struct {
	Dimensions []string // names of the DimensionKeys positions
	Records    []CostRecord
	Skipped    int // rows dropped because they carried no amount
}

// Len returns the number of periods in the series
func (s CostSeries) Len() int {
	return len(s.Records)
}

// Clone returns a copy that shares no slices with s
func (s CostSeries) Clone() CostSeries {
	records := make([]CostRecord, len(s.Records))
	for i, r := range s.Records {
		r.DimensionKeys = r.Keys()
		records[i] = r
	}
	return CostSeries{
		Dimensions: append([]string(nil), s.Dimensions...),
		Records:    records,
		Skipped:    s.Skipped,
	}
}
