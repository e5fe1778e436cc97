package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/cost-atlas/pkg/models/api"
)

const summaryTemplate = `
Cost Analysis {{.ID}} ({{.Period.Duration}} days)
Period: {{.Period.Start}} to {{.Period.End}}
Total Cost: {{.Currency}} {{printf "%.2f" .TotalCost}}
Trend: {{.TrendDirection}} ({{printf "%.1f" .GrowthRate}}%), average {{printf "%.2f" .AverageCost}} over {{.TotalPeriods}} periods
Efficiency: {{printf "%.2f" .EfficiencyMetrics.Score}} ({{.EfficiencyMetrics.MethodUsed}}), waste {{printf "%.1f" .EfficiencyMetrics.WastePercentage}}%
{{if .TopContributors}}
=== Top Contributors ===
{{range .TopContributors}}- {{.Key}}: {{printf "%.2f" .Cost}}
{{end}}{{end}}{{if .Patterns}}
=== Patterns ===
{{range .Patterns}}- {{.}}
{{end}}{{end}}{{if .Insights}}
=== Insights ===
{{range .Insights}}- {{.}}
{{end}}{{end}}{{if .MissingSources}}
Missing sources: {{join .MissingSources}}
{{end}}`

var funcMap = template.FuncMap{
	"join": func(values []string) string {
		return strings.Join(values, ", ")
	},
}

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
	tmpl   *template.Template
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	tmpl := template.Must(template.New("report").Funcs(funcMap).Parse(summaryTemplate))
	return &Reporter{writer: writer, tmpl: tmpl}
}

func (c *Reporter) Handle(_ context.Context, report *api.Report) error {
	if err := c.tmpl.Execute(c.writer, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
