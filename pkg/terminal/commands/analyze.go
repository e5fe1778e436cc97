package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/adapters"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/runtime/s3"
	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
	"github.com/de-tools/cost-atlas/pkg/services/cost/aws_ce"
	"github.com/de-tools/cost-atlas/pkg/services/registry"
)

type AnalyzeCmd struct {
	configPath  string
	sources     string
	start       string
	end         string
	days        int
	granularity string
	dimensions  []string
	filters     []string
	scope       string
	format      string
	output      string
	s3Bucket    string
	timeout     time.Duration
	deps        Deps
}

func NewAnalyzeCmd(deps Deps) *cobra.Command {
	ac := &AnalyzeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze costs across the configured sources",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to the cost-atlas YAML config")
	cmd.Flags().StringVar(&ac.sources, "sources", "", "Comma separated sources to analyze (default: every enabled source)")
	cmd.Flags().StringVar(&ac.start, "start", "", "Start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&ac.end, "end", "", "End date (exclusive), YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&ac.days, "days", cost.DefaultWindowDays, "Days to analyze when no start date is given")
	cmd.Flags().StringVar(&ac.granularity, "granularity", string(domain.GranularityDaily), "HOURLY, DAILY, MONTHLY or NONE")
	cmd.Flags().StringSliceVar(&ac.dimensions, "dimensions", nil, "Dimensions to group by, e.g. SERVICE,REGION")
	cmd.Flags().StringArrayVar(&ac.filters, "filter", nil, "Filter as DIMENSION:value1,value2, repeatable")
	cmd.Flags().StringVar(&ac.scope, "scope", "", "Provider scope such as an Azure subscription path")
	cmd.Flags().StringVar(&ac.format, "format", "text", "Output format: text, table or json")
	cmd.Flags().StringVar(&ac.output, "output", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&ac.s3Bucket, "s3-bucket", "", "Also upload the JSON report to this S3 bucket")
	cmd.Flags().DurationVar(&ac.timeout, "timeout", 5*time.Minute, "Overall analysis timeout")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return err
	}
	logger := cfg.Logger(ac.deps.logs())
	ctx := logger.WithContext(cmd.Context())

	if ac.sources != "" {
		cfg.Sources = selectSources(cfg.Sources, cost.SplitList(ac.sources))
	}
	if len(cfg.EnabledSources()) == 0 {
		return errors.New("no cost sources enabled, pass --sources or add them to the config file")
	}

	start, end, err := cost.ParseWindow(ac.start, ac.end, ac.days, time.Now())
	if err != nil {
		return err
	}
	filter, err := cost.ParseFilter(ac.filters)
	if err != nil {
		return err
	}

	sources, err := registry.Sources(ctx, ac.deps.Registry, cfg)
	if err != nil {
		return err
	}
	svc, err := registry.NewService(ctx, sources, cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, ac.timeout)
	defer cancel()

	report, err := svc.Analyze(ctx, cost.Request{
		Sources: svc.Sources(),
		Query: cost.Query{
			Start:       start,
			End:         end,
			Granularity: domain.Granularity(ac.granularity),
			Dimensions:  ac.dimensions,
			Filter:      filter,
			Scope:       ac.scope,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to analyze costs: %w", err)
	}

	out, closeOut, err := ac.writer(cmd)
	if err != nil {
		return err
	}
	defer closeOut(zerolog.Ctx(ctx))

	sink, err := ac.sink(ctx, cfg, out)
	if err != nil {
		return err
	}
	apiReport := adapters.MapReportDomainToApi(report)
	return sink.Handle(ctx, &apiReport)
}

func (ac *AnalyzeCmd) writer(cmd *cobra.Command) (io.Writer, func(*zerolog.Logger), error) {
	if ac.output == "" {
		return cmd.OutOrStdout(), func(*zerolog.Logger) {}, nil
	}
	f, err := os.Create(ac.output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func(logger *zerolog.Logger) {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Str("path", ac.output).Msg("failed to close output file")
		}
	}, nil
}

func (ac *AnalyzeCmd) sink(ctx context.Context, cfg *config.AppConfig, out io.Writer) (export.Sink, error) {
	local, err := ac.deps.Sinks(ac.format, out)
	if err != nil {
		return nil, err
	}

	bucket := ac.s3Bucket
	if bucket == "" {
		bucket = cfg.S3.Bucket
	}
	if bucket == "" {
		return local, nil
	}

	awsCfg, err := aws_ce.LoadConfig(ctx, cfg.S3.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3 upload: %w", err)
	}
	return export.Multi{local, s3.NewSinkFromConfig(*awsCfg, bucket, cfg.S3.Prefix)}, nil
}

// selectSources keeps only the named sources, enabling them with their configured profile
func selectSources(configured map[string]config.SourceConfig, names []string) map[string]config.SourceConfig {
	selected := make(map[string]config.SourceConfig, len(names))
	for _, name := range names {
		name = strings.ToLower(name)
		src := configured[name]
		src.Disabled = false
		selected[name] = src
	}
	return selected
}
