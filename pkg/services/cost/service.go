package cost

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/analytics"
)

// Request asks for one report across one or more sources
type Request struct {
	Sources []string
	Query   Query
	NoCache bool
}

// Service produces cost analysis reports
type Service interface {
	// Analyze fails only for requests that cannot be served. Source failures are
	// reported inside the returned report.
	Analyze(ctx context.Context, req Request) (*domain.AnalysisReport, error)
	Sources() []string
	InvalidateCache(source string) int
}

type service struct {
	sources map[string]Source
	engine  *analytics.Engine
	fetcher *Fetcher
	cache   *Cache
	metrics *Metrics
}

// NewService wires the pipeline. cache and metrics may be nil.
func NewService(sources []Source, engine *analytics.Engine, fetcher *Fetcher, cache *Cache, metrics *Metrics) (Service, error) {
	s := &service{
		sources: make(map[string]Source, len(sources)),
		engine:  engine,
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
	}
	if s.engine == nil {
		s.engine = analytics.NewEngine()
	}
	if s.fetcher == nil {
		s.fetcher = NewFetcher(DefaultFetcherConfig(), metrics)
	}

	for _, src := range sources {
		name := src.Name()
		if _, exists := s.sources[name]; exists {
			return nil, fmt.Errorf("duplicate cost source: %s", name)
		}
		s.sources[name] = src
	}
	return s, nil
}

func (s *service) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *service) Analyze(ctx context.Context, req Request) (*domain.AnalysisReport, error) {
	logger := zerolog.Ctx(ctx)

	selected, err := s.selectSources(req.Sources)
	if err != nil {
		return nil, err
	}
	q := req.Query.Clone()
	if g, ok := domain.ParseGranularity(string(q.Granularity)); ok {
		q.Granularity = g
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, len(selected))
	for i, src := range selected {
		names[i] = src.Name()
	}
	sig := SignatureOf(names, q)

	if s.cache != nil && !req.NoCache {
		report, ok := s.cache.Get(sig)
		s.metrics.observeCache(ok)
		if ok {
			logger.Debug().Strs("sources", names).Msg("serving cached cost report")
			return report, nil
		}
	}

	results := s.fetcher.FetchAll(ctx, selected, q)
	report := s.engine.AssembleSources(results, groupBy(selected, q))
	report.Period = domain.TimePeriod{Start: q.Start, End: q.End}
	s.metrics.observeReport(report.Complete())

	if s.cache != nil && s.cache.Put(sig, report) {
		logger.Debug().Strs("sources", names).Msg("cached cost report")
	}
	if !report.Complete() {
		logger.Warn().Strs("missing_sources", report.MissingSources).Msg("cost report is partial")
	}
	return report, nil
}

func (s *service) InvalidateCache(source string) int {
	if s.cache == nil {
		return 0
	}
	if source == "" {
		n := s.cache.Len()
		s.cache.Purge()
		return n
	}
	return s.cache.InvalidateSource(source)
}

func (s *service) selectSources(names []string) ([]Source, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one source is required", domain.ErrInvalidRequest)
	}
	var selected []Source
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		src, ok := s.sources[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidRequest, raw)
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, src)
		}
	}
	return selected, nil
}

// groupBy uses the requested dimensions, or the defaults of a single source
func groupBy(sources []Source, q Query) []string {
	if len(q.Dimensions) > 0 {
		return q.Dimensions
	}
	if len(sources) == 1 {
		return sources[0].Dimensions(q)
	}
	return nil
}
