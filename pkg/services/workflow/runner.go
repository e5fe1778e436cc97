package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

// Runner periodically rebuilds one report so the service cache stays warm
type Runner struct {
	service  cost.Service
	config   RunnerConfig
	now      func() time.Time
	done     chan struct{}
	progress chan RunnerProgress
}

type RunnerConfig struct {
	Interval    time.Duration      `mapstructure:"interval"` // 0 disables the runner
	Days        int                `mapstructure:"days"`
	Granularity domain.Granularity `mapstructure:"granularity"`
	Dimensions  []string           `mapstructure:"dimensions"`
}

type RunnerProgress struct {
	Runs           int64
	Complete       bool
	MissingSources []string
	LastRunAt      time.Time
}

func NewRunner(service cost.Service, config RunnerConfig) *Runner {
	if config.Days <= 0 {
		config.Days = cost.DefaultWindowDays
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &Runner{
		service:  service,
		config:   config,
		now:      time.Now,
		done:     make(chan struct{}),
		progress: make(chan RunnerProgress, 100),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every successful run. Updates are dropped while the channel is full.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

// Run refreshes immediately and then on every interval until ctx is done
func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("workflow", "report_refresh").Logger()
	ctx = logger.WithContext(ctx)
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	runs := int64(0)
	for {
		report, err := r.refresh(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to refresh report")
		} else {
			runs++
			update := RunnerProgress{
				Runs:           runs,
				Complete:       report.Complete(),
				MissingSources: report.MissingSources,
				LastRunAt:      report.GeneratedAt,
			}
			select {
			case r.progress <- update:
			default:
			}
			logger.Info().
				Int64("runs", runs).
				Bool("complete", update.Complete).
				Msg("report refreshed")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("report refresh stopped")
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) refresh(ctx context.Context) (*domain.AnalysisReport, error) {
	start, end, err := cost.ParseWindow("", "", r.config.Days, r.now())
	if err != nil {
		return nil, err
	}
	return r.service.Analyze(ctx, cost.Request{
		Sources: r.service.Sources(),
		NoCache: true,
		Query: cost.Query{
			Start:       start,
			End:         end,
			Granularity: r.config.Granularity,
			Dimensions:  r.config.Dimensions,
		},
	})
}
