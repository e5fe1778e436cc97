package registry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/services/analytics"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
	"github.com/de-tools/cost-atlas/pkg/services/cost/aws_ce"
	"github.com/de-tools/cost-atlas/pkg/services/cost/azure"
	"github.com/de-tools/cost-atlas/pkg/services/cost/databricks"
	"github.com/de-tools/cost-atlas/pkg/services/cost/gcp"
	"github.com/de-tools/cost-atlas/pkg/services/cost/snowflake"
)

// Default returns a registry holding every built-in source factory
func Default() cost.Registry {
	r := cost.NewRegistry()
	for name, factory := range map[string]cost.SourceFactory{
		aws_ce.Name:     aws_ce.SourceFactory,
		azure.Name:      azure.SourceFactory,
		databricks.Name: databricks.SourceFactory,
		gcp.Name:        gcp.SourceFactory,
		snowflake.Name:  snowflake.SourceFactory,
	} {
		mustRegister(r, name, factory)
	}
	return r
}

func mustRegister(r cost.Registry, name string, factory cost.SourceFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(fmt.Sprintf("failed to register built-in source: %v", err))
	}
}

// Sources instantiates each enabled source of cfg. A source that cannot be created is
// skipped with a warning so the remaining providers stay usable.
func Sources(ctx context.Context, reg cost.Registry, cfg *config.AppConfig) ([]cost.Source, error) {
	logger := zerolog.Ctx(ctx)

	enabled := cfg.EnabledSources()
	sources := make([]cost.Source, 0, len(enabled))
	for _, name := range enabled {
		src, err := reg.Create(ctx, name, cfg.Sources[name].Profile)
		if err != nil {
			logger.Warn().Err(err).Str("source", name).Msg("source disabled")
			continue
		}
		sources = append(sources, src)
	}

	if len(enabled) > 0 && len(sources) == 0 {
		return nil, fmt.Errorf("none of the configured sources could be created: %v", enabled)
	}
	return sources, nil
}

// NewService wires the analysis service from cfg with metrics registered on reg
func NewService(ctx context.Context, sources []cost.Source, cfg *config.AppConfig, reg prometheus.Registerer) (cost.Service, error) {
	opts := []analytics.Option{analytics.WithThresholds(cfg.Analytics)}
	model, err := cfg.AnomalyModel()
	if err != nil {
		return nil, err
	}
	if model != nil {
		opts = append(opts, analytics.WithAnomalyModel(model))
	}

	metrics := cost.NewMetrics(reg)
	svc, err := cost.NewService(
		sources,
		analytics.NewEngine(opts...),
		cost.NewFetcher(cfg.Fetcher, metrics),
		cost.NewCache(cfg.Cache.Size, cfg.Cache.TTL),
		metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost service: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Strs("sources", svc.Sources()).
		Msg("cost service ready")
	return svc, nil
}
