package config

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/de-tools/cost-atlas/pkg/services/analytics"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
	"github.com/de-tools/cost-atlas/pkg/services/workflow"
)

const EnvPrefix = "COST_ATLAS"

// SourceConfig enables a cost source. Profile is the provider profile name or profile file path.
type SourceConfig struct {
	Profile  string `mapstructure:"profile"`
	Disabled bool   `mapstructure:"disabled"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type AnomalyConfig struct {
	Model        string  `mapstructure:"model"` // "seasonal" or empty for thresholds only
	SeasonLength int     `mapstructure:"season_length"`
	MinSeasons   int     `mapstructure:"min_seasons"`
	Sigma        float64 `mapstructure:"sigma"`
	Tolerance    float64 `mapstructure:"tolerance"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

type S3Config struct {
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Profile string `mapstructure:"profile"`
}

type AppConfig struct {
	Sources   map[string]SourceConfig `mapstructure:"sources"`
	Fetcher   cost.FetcherConfig      `mapstructure:"fetcher"`
	Cache     CacheConfig             `mapstructure:"cache"`
	Analytics analytics.Thresholds    `mapstructure:"analytics"`
	Anomaly   AnomalyConfig           `mapstructure:"anomaly"`
	Server    ServerConfig            `mapstructure:"server"`
	Log       LogConfig               `mapstructure:"log"`
	S3        S3Config                `mapstructure:"s3"`
	Refresh   workflow.RunnerConfig   `mapstructure:"refresh"`
}

func setDefaults(v *viper.Viper) {
	fetcher := cost.DefaultFetcherConfig()
	v.SetDefault("fetcher.workers", fetcher.Workers)
	v.SetDefault("fetcher.timeout", fetcher.Timeout)
	v.SetDefault("fetcher.max_retry_elapsed", fetcher.MaxRetryElapsed)
	v.SetDefault("fetcher.initial_interval", fetcher.InitialInterval)

	v.SetDefault("cache.size", cost.DefaultCacheSize)
	v.SetDefault("cache.ttl", 15*time.Minute)

	t := analytics.DefaultThresholds()
	v.SetDefault("analytics.increasing_pct", t.IncreasingPct)
	v.SetDefault("analytics.decreasing_pct", t.DecreasingPct)
	v.SetDefault("analytics.waste_multiplier", t.WasteMultiplier)
	v.SetDefault("analytics.variance_weight", t.VarianceWeight)
	v.SetDefault("analytics.score_floor", t.ScoreFloor)
	v.SetDefault("analytics.score_ceiling", t.ScoreCeiling)
	v.SetDefault("analytics.top_n", t.TopN)

	baseline := analytics.NewSeasonalBaseline()
	v.SetDefault("anomaly.model", "")
	v.SetDefault("anomaly.season_length", baseline.SeasonLength)
	v.SetDefault("anomaly.min_seasons", baseline.MinSeasons)
	v.SetDefault("anomaly.sigma", baseline.Sigma)
	v.SetDefault("anomaly.tolerance", baseline.Tolerance)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "cost-atlas")
	v.SetDefault("s3.profile", "")

	v.SetDefault("refresh.interval", time.Duration(0))
	v.SetDefault("refresh.days", cost.DefaultWindowDays)
	v.SetDefault("refresh.granularity", "DAILY")
}

// LoadConfig reads the YAML config at path, if any, with COST_ATLAS_ environment overrides
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]SourceConfig{}
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	return &cfg, nil
}

// EnabledSources returns the names of the configured, enabled sources
func (c *AppConfig) EnabledSources() []string {
	names := make([]string, 0, len(c.Sources))
	for name, src := range c.Sources {
		if !src.Disabled {
			names = append(names, strings.ToLower(name))
		}
	}
	slices.Sort(names)
	return names
}

// AnomalyModel returns the configured model, nil when only thresholds are used
func (c *AppConfig) AnomalyModel() (analytics.AnomalyModel, error) {
	switch strings.ToLower(c.Anomaly.Model) {
	case "", "none", "threshold":
		return nil, nil
	case "seasonal":
		return &analytics.SeasonalBaseline{
			SeasonLength: c.Anomaly.SeasonLength,
			MinSeasons:   c.Anomaly.MinSeasons,
			Sigma:        c.Anomaly.Sigma,
			Tolerance:    c.Anomaly.Tolerance,
		}, nil
	default:
		return nil, fmt.Errorf("unknown anomaly model %q", c.Anomaly.Model)
	}
}

// Logger builds the process logger at the configured level
func (c *AppConfig) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.Log.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
