package gcp

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strings"

	"github.com/de-tools/cost-atlas/pkg/services/cost"
	"github.com/de-tools/cost-atlas/pkg/services/cost/databricks"
	"github.com/de-tools/cost-atlas/pkg/services/cost/snowflake"
	sqlstore "github.com/de-tools/cost-atlas/pkg/store/sql"
)

const Name = "gcp"

// Nested export fields, addressed with each warehouse's struct syntax
var columns = map[string]map[string]string{
	DriverDatabricks: {
		"service":  "service.description",
		"location": "location.region",
		"project":  "project.id",
		"sku":      "sku.description",
	},
	DriverSnowflake: {
		"service":  "service:description::string",
		"location": "location:region::string",
		"project":  "project:id::string",
		"sku":      "sku:description::string",
	},
}

// SourceFactory creates a GCP billing export source from a YAML profile path
func SourceFactory(_ context.Context, profile string) (cost.Source, error) {
	cfg, err := LoadConfig(profile)
	if err != nil {
		return nil, err
	}
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSource(db, cfg), nil
}

func open(cfg *Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverSnowflake:
		sfCfg, err := snowflake.LoadConfig(cfg.Connection)
		if err != nil {
			return nil, fmt.Errorf("failed to load export connection: %w", err)
		}
		return snowflake.Open(sfCfg)
	default:
		dbCfg, err := databricks.LoadConfig(cfg.Connection)
		if err != nil {
			return nil, fmt.Errorf("failed to load export connection: %w", err)
		}
		return databricks.Open(dbCfg)
	}
}

func NewSource(db *sql.DB, cfg *Config) cost.Source {
	return cost.NewSQLSource(Name, Table(cfg), sqlstore.NewCostStore(db))
}

// Table maps the standard billing export schema onto a BillingTable
func Table(cfg *Config) cost.BillingTable {
	cols := maps.Clone(columns[cfg.Driver])
	if cols == nil {
		cols = maps.Clone(columns[DriverDatabricks])
	}
	for name, expr := range cfg.Columns {
		cols[strings.ToLower(name)] = expr
	}

	return cost.BillingTable{
		From:      cfg.Table,
		Timestamp: "usage_start_time",
		Amount:    "cost",
		Currency:  "currency",
		Columns:   cols,
		Defaults:  []string{"service"},
	}
}
