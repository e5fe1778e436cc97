package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

var dateLayouts = []string{
	time.DateOnly,
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type NormalizeOptions struct {
	Dimensions      []string
	Granularity     domain.Granularity
	DefaultCurrency string
}

// Normalize converts provider-shaped rows into a series ordered by period start.
// Rows without an amount are skipped, a bad date or amount fails the whole call.
func Normalize(rows []domain.RawRow, opts NormalizeOptions) (domain.CostSeries, error) {
	currency := strings.ToUpper(strings.TrimSpace(opts.DefaultCurrency))
	if currency == "" {
		currency = DefaultCurrency
	}

	series := domain.CostSeries{
		Dimensions: slices.Clone(opts.Dimensions),
		Records:    make([]domain.CostRecord, 0, len(rows)),
	}

	for i, row := range rows {
		rawAmount, ok := row[domain.FieldAmount]
		if !ok || rawAmount == nil {
			series.Skipped++
			continue
		}
		amount, err := parseAmount(rawAmount)
		if err != nil {
			return domain.CostSeries{}, &domain.NormalizationError{RowIndex: i, Reason: err.Error()}
		}

		start, ok, err := parseDate(row[domain.FieldStart])
		if err != nil {
			return domain.CostSeries{}, &domain.NormalizationError{RowIndex: i, Reason: fmt.Sprintf("start date: %v", err)}
		}
		if !ok {
			return domain.CostSeries{}, &domain.NormalizationError{RowIndex: i, Reason: "missing start date"}
		}

		end, ok, err := parseDate(row[domain.FieldEnd])
		if err != nil {
			return domain.CostSeries{}, &domain.NormalizationError{RowIndex: i, Reason: fmt.Sprintf("end date: %v", err)}
		}
		if !ok {
			end = opts.Granularity.Next(start)
		}

		rowCurrency := currency
		if c, ok := row[domain.FieldCurrency].(string); ok && strings.TrimSpace(c) != "" {
			rowCurrency = strings.ToUpper(strings.TrimSpace(c))
		}

		keys := make([]string, len(opts.Dimensions))
		for j, name := range opts.Dimensions {
			keys[j] = dimensionValue(row[name])
		}

		series.Records = append(series.Records, domain.CostRecord{
			PeriodStart:   start,
			PeriodEnd:     end,
			Amount:        amount,
			Currency:      rowCurrency,
			DimensionKeys: keys,
		})
	}

	series.Records = chronological(series.Records)
	return series, nil
}

func parseDate(v any) (time.Time, bool, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false, nil
		}
		return t, true, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false, nil
		}
		return *t, true, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
	case json.Number:
		return parseDate(t.String())
	case float64:
		if t != math.Trunc(t) {
			return time.Time{}, false, fmt.Errorf("unrecognized date %v", t)
		}
		return parseDate(int64(t))
	case int:
		return parseDate(int64(t))
	case int32:
		return parseDate(int64(t))
	case int64:
		// numeric yyyymmdd, as returned in Azure UsageDate columns
		return parseDate(fmt.Sprintf("%08d", t))
	default:
		return time.Time{}, false, fmt.Errorf("unsupported date type %T", v)
	}
}

func parseAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case decimal.Decimal:
		return a, nil
	case *decimal.Decimal:
		return *a, nil
	case float64:
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return decimal.Zero, fmt.Errorf("amount is not finite: %v", a)
		}
		return decimal.NewFromFloat(a), nil
	case float32:
		return parseAmount(float64(a))
	case int:
		return decimal.NewFromInt(int64(a)), nil
	case int32:
		return decimal.NewFromInt32(a), nil
	case int64:
		return decimal.NewFromInt(a), nil
	case json.Number:
		return parseAmount(a.String())
	case []byte:
		return parseAmount(string(a))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid amount %q", a)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

func dimensionValue(v any) string {
	switch d := v.(type) {
	case nil:
		return UnknownKey
	case string:
		if strings.TrimSpace(d) == "" {
			return UnknownKey
		}
		return d
	case []byte:
		return dimensionValue(string(d))
	case int64:
		return strconv.FormatInt(d, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
