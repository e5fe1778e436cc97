package cost

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	sqlstore "github.com/de-tools/cost-atlas/pkg/store/sql"
)

// BillingTable describes a billing table that can be aggregated with SQL
type BillingTable struct {
	From          string
	Timestamp     string
	Amount        string
	Currency      string
	FixedCurrency string // stamped on every row when the table has no currency column
	Where         []string
	Columns       map[string]string // lower-case dimension name to column expression
	Defaults      []string
}

type sqlSource struct {
	name  string
	table BillingTable
	store sqlstore.CostStore
}

// NewSQLSource serves cost rows from a billing table behind a CostStore
func NewSQLSource(name string, table BillingTable, store sqlstore.CostStore) Source {
	return &sqlSource{name: name, table: table, store: store}
}

func (s *sqlSource) Name() string {
	return s.name
}

func (s *sqlSource) Dimensions(q Query) []string {
	dims := ResolveDimensions(q.Dimensions, s.table.Defaults, 0)
	for i, d := range dims {
		dims[i] = strings.ToLower(strings.TrimSpace(d))
	}
	return dims
}

func (s *sqlSource) allowed() string {
	names := make([]string, 0, len(s.table.Columns))
	for name := range s.table.Columns {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

func (s *sqlSource) buildQuery(q Query) (sqlstore.CostQuery, error) {
	cq := sqlstore.CostQuery{
		From:        s.table.From,
		Timestamp:   s.table.Timestamp,
		Amount:      s.table.Amount,
		Currency:    s.table.Currency,
		Where:       s.table.Where,
		Granularity: q.Granularity,
		Start:       q.Start,
		End:         q.End,
	}

	for _, d := range s.Dimensions(q) {
		expr, ok := s.table.Columns[d]
		if !ok {
			return cq, fmt.Errorf("%w: invalid %s dimension %q, allowed: %s", domain.ErrInvalidRequest, s.name, d, s.allowed())
		}
		cq.Dimensions = append(cq.Dimensions, sqlstore.Column{Name: d, Expr: expr})
	}

	for _, key := range FilterKeys(q.Filter) {
		expr, ok := s.table.Columns[strings.ToLower(key)]
		if !ok {
			return cq, fmt.Errorf("%w: invalid %s filter dimension %q, allowed: %s", domain.ErrInvalidRequest, s.name, key, s.allowed())
		}
		cq.Filters = append(cq.Filters, sqlstore.Filter{Expr: expr, Values: q.Filter[key]})
	}
	return cq, nil
}

func (s *sqlSource) Fetch(ctx context.Context, q Query) ([]domain.RawRow, error) {
	cq, err := s.buildQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.QueryCosts(ctx, cq)
	if err != nil {
		return nil, domain.Unavailable(s.name, err)
	}
	if s.table.FixedCurrency != "" {
		for _, row := range rows {
			row[domain.FieldCurrency] = s.table.FixedCurrency
		}
	}
	return rows, nil
}
