package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/cost-atlas/pkg/models/api"
)

// Sink receives finished reports
type Sink interface {
	Handle(ctx context.Context, report *api.Report) error
}

type TableConfig struct {
	DateWidth  int
	KeyWidth   int
	CostWidth  int
	ShareWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		DateWidth:  12,
		KeyWidth:   48,
		CostWidth:  14,
		ShareWidth: 8,
	}
}

// Reporter renders the report as contributor and period tables
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(_ context.Context, report *api.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(date string, key string, cost any, share any) string {
			return fmt.Sprintf("| %-*s | %-*s | %*v | %*v |",
				c.config.DateWidth, date,
				c.config.KeyWidth, truncate(key, c.config.KeyWidth),
				c.config.CostWidth, cost,
				c.config.ShareWidth, share)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.DateWidth+2),
				strings.Repeat("-", c.config.KeyWidth+2),
				strings.Repeat("-", c.config.CostWidth+2),
				strings.Repeat("-", c.config.ShareWidth+2))
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"share": func(v, total float64) string {
			if total <= 0 {
				return "-"
			}
			return fmt.Sprintf("%.1f%%", v/total*100)
		},
		"dims": func(dims map[string]string, names []string) string {
			values := make([]string, 0, len(names))
			for _, n := range names {
				values = append(values, dims[n])
			}
			return strings.Join(values, "|")
		},
	}

	tmpl := `
Cost Analysis ({{.Period.Duration}} days)

Active Period: {{.Period.Start}} to {{.Period.End}}
Total Amount: {{.Currency}} {{money .TotalCost}}
Trend: {{.TrendDirection}}, growth {{printf "%.1f" .GrowthRate}}%

=== Top Contributors ===
{{separator}}
{{formatRow "" "Key" "Cost" "Share"}}
{{separator}}
{{range .TopContributors}}{{formatRow "" .Key (money .Cost) (share .Cost $.TotalCost)}}
{{end}}{{separator}}

=== Periods ===
{{separator}}
{{formatRow "Date" "Dimensions" "Cost" "Currency"}}
{{separator}}
{{range .CostTrends}}{{formatRow .Date (dims .Dimensions $.Dimensions) (money .Cost) .Currency}}
{{end}}{{separator}}
{{range .Insights}}
* {{.}}{{end}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
