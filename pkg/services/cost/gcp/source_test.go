package gcp

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/analytics"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "gcp.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`table: "billing.gcp_billing_export_v1_0123"
connection: "./databricks.yaml"
columns:
  Project: "project.name"`), 0o644))
	noTable := filepath.Join(dir, "notable.yaml")
	require.NoError(t, os.WriteFile(noTable, []byte(`driver: snowflake`), 0o644))
	badDriver := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badDriver, []byte("table: t\ndriver: bigquery"), 0o644))

	cfg, err := LoadConfig(good)
	require.NoError(t, err)
	assert.Equal(t, DriverDatabricks, cfg.Driver)
	assert.Equal(t, "project.name", Table(cfg).Columns["project"])

	_, err = LoadConfig(noTable)
	assert.ErrorContains(t, err, "billing export table")

	_, err = LoadConfig(badDriver)
	assert.ErrorContains(t, err, "bigquery")
}

func TestTable_SnowflakeColumns(t *testing.T) {
	table := Table(&Config{Driver: DriverSnowflake, Table: "GCP.BILLING.EXPORT"})

	assert.Equal(t, "service:description::string", table.Columns["service"])
	assert.Equal(t, "GCP.BILLING.EXPORT", table.From)
}

func TestSource_Fetch(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)` + regexp.QuoteMeta("service.description AS service,") +
		`\s+` + regexp.QuoteMeta("location.region AS location") +
		`.*FROM billing\.export.*` + regexp.QuoteMeta("project.id IN (?, ?)")).
		WithArgs("2025-06-01 00:00:00", "2025-06-03 00:00:00", "prod", "staging").
		WillReturnRows(sqlmock.NewRows([]string{"period_start", "cost_amount", "currency_code", "service", "location"}).
			AddRow(start, 10.25, "EUR", "Compute Engine", "europe-west1").
			AddRow(start.AddDate(0, 0, 1), 8.0, "EUR", "Cloud Storage", nil))

	src := NewSource(db, &Config{Driver: DriverDatabricks, Table: "billing.export"})
	q := cost.Query{
		Start:       start,
		End:         start.AddDate(0, 0, 2),
		Granularity: domain.GranularityDaily,
		Dimensions:  []string{"service", "location"},
		Filter:      map[string][]string{"project": {"prod", "staging"}},
	}

	// When
	rows, err := src.Fetch(context.Background(), q)

	// Then
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	series, err := analytics.Normalize(rows, analytics.NormalizeOptions{Dimensions: src.Dimensions(q)})
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, "EUR", series.Records[0].Currency)
	assert.Equal(t, []string{"Cloud Storage", analytics.UnknownKey}, series.Records[1].DimensionKeys)
}
