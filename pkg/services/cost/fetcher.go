package cost

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/analytics"
)

const (
	DefaultWorkers         = 4
	DefaultFetchTimeout    = 60 * time.Second
	DefaultMaxRetryElapsed = 2 * time.Minute
	DefaultInitialInterval = 500 * time.Millisecond
)

type FetcherConfig struct {
	Workers         int           `mapstructure:"workers"`
	Timeout         time.Duration `mapstructure:"timeout"`           // per attempt
	MaxRetryElapsed time.Duration `mapstructure:"max_retry_elapsed"` // 0 disables retries
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Workers:         DefaultWorkers,
		Timeout:         DefaultFetchTimeout,
		MaxRetryElapsed: DefaultMaxRetryElapsed,
		InitialInterval: DefaultInitialInterval,
	}
}

// Fetcher pulls several sources concurrently and normalizes their rows.
// One failing source never aborts the others.
type Fetcher struct {
	cfg     FetcherConfig
	metrics *Metrics
}

func NewFetcher(cfg FetcherConfig, metrics *Metrics) *Fetcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultInitialInterval
	}
	return &Fetcher{cfg: cfg, metrics: metrics}
}

// FetchAll returns one result per source in input order
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source, q Query) []analytics.SourceResult {
	results := make([]analytics.SourceResult, len(sources))

	var g errgroup.Group
	g.SetLimit(f.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, src, q.Clone())
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, src Source, q Query) analytics.SourceResult {
	name := src.Name()
	logger := zerolog.Ctx(ctx).With().Str("source", name).Logger()
	started := time.Now()
	result := analytics.SourceResult{Source: name}

	rows, err := f.fetchWithRetry(ctx, src, q, logger)
	if err != nil {
		result.Err = domain.Unavailable(name, err)
		f.metrics.observeFetch(name, OutcomeUnavailable, time.Since(started))
		logger.Warn().Err(result.Err).Msg("cost source unavailable")
		return result
	}

	series, err := analytics.Normalize(rows, analytics.NormalizeOptions{
		Dimensions:  src.Dimensions(q),
		Granularity: q.Granularity,
	})
	if err != nil {
		result.Err = err
		f.metrics.observeFetch(name, OutcomeInvalidData, time.Since(started))
		logger.Warn().Err(err).Msg("cost source returned invalid data")
		return result
	}

	result.Series = series
	f.metrics.observeFetch(name, OutcomeOK, time.Since(started))
	f.metrics.observeSkipped(name, series.Skipped)
	logger.Debug().
		Int("records", series.Len()).
		Int("skipped", series.Skipped).
		Dur("elapsed", time.Since(started)).
		Msg("cost source fetched")
	return result
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, src Source, q Query, logger zerolog.Logger) ([]domain.RawRow, error) {
	var rows []domain.RawRow
	attempt := func() error {
		attemptCtx := ctx
		if f.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
			defer cancel()
		}
		var err error
		rows, err = src.Fetch(attemptCtx, q)
		if err == nil || retryable(ctx, err) {
			return err
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return err
		}
		return backoff.Permanent(err)
	}

	if f.cfg.MaxRetryElapsed <= 0 {
		err := attempt()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return rows, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialInterval
	b.MaxElapsedTime = f.cfg.MaxRetryElapsed

	notify := func(err error, wait time.Duration) {
		f.metrics.observeRetry(src.Name())
		logger.Debug().Err(err).Dur("wait", wait).Msg("retrying cost source fetch")
	}
	if err := backoff.RetryNotify(attempt, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return rows, nil
}

// retryable reports whether another attempt could succeed
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var ne *domain.NormalizationError
	if errors.As(err, &ne) || errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, context.Canceled) {
		return false
	}
	var perm *backoff.PermanentError
	return !errors.As(err, &perm)
}
