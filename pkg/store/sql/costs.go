package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

type CostStore interface {
	QueryCosts(ctx context.Context, q CostQuery) ([]domain.RawRow, error)
}

type costStore struct {
	db *sql.DB
}

func NewCostStore(db *sql.DB) CostStore {
	return &costStore{db: db}
}

func rowKey(column string) string {
	switch name := strings.ToLower(column); name {
	case ColumnPeriod:
		return domain.FieldStart
	case ColumnAmount:
		return domain.FieldAmount
	case ColumnCurrency:
		return domain.FieldCurrency
	default:
		return name
	}
}

func (s *costStore) QueryCosts(ctx context.Context, q CostQuery) ([]domain.RawRow, error) {
	logger := zerolog.Ctx(ctx)

	query, args := q.Build()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cost query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close cost query rows")
		}
	}(rows)

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read cost query columns: %w", err)
	}
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = rowKey(c)
	}

	var records []domain.RawRow
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan cost row: %w", err)
		}

		row := make(domain.RawRow, len(columns)+1)
		for i, key := range keys {
			switch v := values[i].(type) {
			case nil:
			case []byte:
				row[key] = string(v)
			default:
				row[key] = v
			}
		}
		if !q.Grouped() {
			row[domain.FieldStart] = q.Start
			row[domain.FieldEnd] = q.End
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cost query rows failed: %w", err)
	}

	logger.Debug().
		Int("rows", len(records)).
		Str("from", q.From).
		Msg("retrieved cost rows")

	return records, nil
}
