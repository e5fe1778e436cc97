package sql

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

// Result column aliases, mapped back to raw row fields by the store
const (
	ColumnPeriod   = "period_start"
	ColumnAmount   = "cost_amount"
	ColumnCurrency = "currency_code"

	timestampLayout = "2006-01-02 15:04:05"
)

// Column is a selected expression and the raw row key it is returned under
type Column struct {
	Name string
	Expr string
}

type Filter struct {
	Expr   string
	Values []string
}

// CostQuery describes a grouped cost aggregation over a billing table.
// Expressions are trusted: callers only pass allowlisted columns.
type CostQuery struct {
	From        string
	Timestamp   string
	Amount      string
	Currency    string
	Dimensions  []Column
	Filters     []Filter
	Where       []string
	Granularity domain.Granularity
	Start       time.Time
	End         time.Time
}

func truncUnit(g domain.Granularity) (string, bool) {
	switch g {
	case domain.GranularityHourly:
		return "HOUR", true
	case domain.GranularityDaily, "":
		return "DAY", true
	case domain.GranularityMonthly:
		return "MONTH", true
	default:
		return "", false
	}
}

// Grouped reports whether result rows carry their own period column
func (q CostQuery) Grouped() bool {
	_, ok := truncUnit(q.Granularity)
	return ok
}

// Build renders the statement and its positional arguments
func (q CostQuery) Build() (string, []any) {
	var selects, groups []string

	if unit, ok := truncUnit(q.Granularity); ok {
		expr := fmt.Sprintf("date_trunc('%s', %s)", unit, q.Timestamp)
		selects = append(selects, expr+" AS "+ColumnPeriod)
		groups = append(groups, expr)
	}
	selects = append(selects, fmt.Sprintf("SUM(%s) AS %s", q.Amount, ColumnAmount))
	if q.Currency != "" {
		selects = append(selects, q.Currency+" AS "+ColumnCurrency)
		groups = append(groups, q.Currency)
	}
	for _, d := range q.Dimensions {
		selects = append(selects, d.Expr+" AS "+d.Name)
		groups = append(groups, d.Expr)
	}

	where := []string{q.Timestamp + " >= ?", q.Timestamp + " < ?"}
	args := []any{q.Start.UTC().Format(timestampLayout), q.End.UTC().Format(timestampLayout)}
	where = append(where, q.Where...)
	for _, f := range q.Filters {
		if len(f.Values) == 0 {
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")
		where = append(where, fmt.Sprintf("%s IN (%s)", f.Expr, placeholders))
		for _, v := range f.Values {
			args = append(args, v)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT\n\t")
	b.WriteString(strings.Join(selects, ",\n\t"))
	b.WriteString("\nFROM ")
	b.WriteString(q.From)
	b.WriteString("\nWHERE ")
	b.WriteString(strings.Join(where, "\n\tAND "))
	if len(groups) > 0 {
		b.WriteString("\nGROUP BY ")
		b.WriteString(strings.Join(groups, ", "))
	}
	if q.Grouped() {
		b.WriteString("\nORDER BY ")
		b.WriteString(ColumnPeriod)
	}
	return b.String(), args
}
