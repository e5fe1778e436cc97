package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/cost-atlas/pkg/services/cost"
	sqlstore "github.com/de-tools/cost-atlas/pkg/store/sql"
)

const (
	Name          = "snowflake"
	meteringTable = "snowflake.account_usage.warehouse_metering_history"
)

// SourceFactory creates a Snowflake source from a YAML profile path
func SourceFactory(ctx context.Context, profile string) (cost.Source, error) {
	cfg, err := LoadConfig(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSource(ctx, db, cfg), nil
}

func Open(cfg *Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return db, nil
}

func NewSource(ctx context.Context, db *sql.DB, cfg *Config) cost.Source {
	return cost.NewSQLSource(Name, Table(ctx, cfg), sqlstore.NewCostStore(db))
}

// Table prices metered warehouse credits with the configured rate card
func Table(ctx context.Context, cfg *Config) cost.BillingTable {
	fallback := cfg.Prices().GetSkuPrice(ctx, "")
	return cost.BillingTable{
		From:          meteringTable,
		Timestamp:     "start_time",
		Amount:        "credits_used * " + creditPrice(ctx, cfg),
		FixedCurrency: fallback.CurrencyCode,
		Columns: map[string]string{
			"warehouse_name": "warehouse_name",
		},
		Defaults: []string{"warehouse_name"},
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func creditPrice(ctx context.Context, cfg *Config) string {
	prices := cfg.Prices()
	fallback := formatPrice(prices.GetSkuPrice(ctx, "").PricePerUnit)
	if len(cfg.WarehousePrices) == 0 {
		return fallback
	}

	warehouses := make([]string, 0, len(cfg.WarehousePrices))
	for name := range cfg.WarehousePrices {
		warehouses = append(warehouses, name)
	}
	slices.Sort(warehouses)

	var b strings.Builder
	b.WriteString("CASE UPPER(warehouse_name)")
	for _, name := range warehouses {
		literal := strings.ReplaceAll(strings.ToUpper(name), "'", "''")
		fmt.Fprintf(&b, " WHEN '%s' THEN %s", literal, formatPrice(prices.GetSkuPrice(ctx, name).PricePerUnit))
	}
	fmt.Fprintf(&b, " ELSE %s END", fallback)
	return b.String()
}
