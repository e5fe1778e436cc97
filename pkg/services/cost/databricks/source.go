package databricks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/databricks/databricks-sql-go"

	cfgregistry "github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
	sqlstore "github.com/de-tools/cost-atlas/pkg/store/sql"
)

const Name = "databricks"

// Table prices system.billing.usage at the list price in effect when the usage ended
var Table = cost.BillingTable{
	From: `system.billing.usage AS u
JOIN system.billing.list_prices AS p
	ON u.sku_name = p.sku_name
	AND u.usage_end_time >= p.price_start_time
	AND (p.price_end_time IS NULL OR u.usage_end_time < p.price_end_time)`,
	Timestamp: "u.usage_start_time",
	Amount:    "u.usage_quantity * p.pricing.default",
	Currency:  "p.currency_code",
	Columns: map[string]string{
		"sku_name":               "u.sku_name",
		"workspace_id":           "u.workspace_id",
		"billing_origin_product": "u.billing_origin_product",
		"usage_unit":             "u.usage_unit",
	},
	Defaults: []string{"sku_name"},
}

// SourceFactory accepts either a YAML profile path or a .databrickscfg profile name
func SourceFactory(ctx context.Context, profile string) (cost.Source, error) {
	cfg, err := resolveConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSource(db), nil
}

func resolveConfig(ctx context.Context, profile string) (*Config, error) {
	if strings.HasSuffix(profile, ".yaml") || strings.HasSuffix(profile, ".yml") {
		return LoadConfig(profile)
	}

	path, err := cfgregistry.DefaultDatabricksConfigPath()
	if err != nil {
		return nil, err
	}
	registry, err := cfgregistry.NewRegistry(path)
	if err != nil {
		return nil, err
	}
	return LoadProfile(ctx, registry, profile)
}

func Open(cfg *Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("databricks", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Databricks: %w", err)
	}
	return db, nil
}

func NewSource(db *sql.DB) cost.Source {
	return cost.NewSQLSource(Name, Table, sqlstore.NewCostStore(db))
}
