package gcp

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Warehouses the billing export can be mirrored into
const (
	DriverDatabricks = "databricks"
	DriverSnowflake  = "snowflake"
)

// Config points at a GCP billing export table and the connection profile of the warehouse holding it
type Config struct {
	Driver     string            `mapstructure:"driver"`
	Connection string            `mapstructure:"connection"` // databricks or snowflake profile
	Table      string            `mapstructure:"table" validate:"required"`
	Columns    map[string]string `mapstructure:"columns"` // dimension expression overrides
}

func LoadConfig(profilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	v.SetDefault("driver", DriverDatabricks)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse gcp config: %w", err)
	}
	cfg.Driver = strings.ToLower(cfg.Driver)

	if cfg.Table == "" {
		return nil, fmt.Errorf("gcp config requires the billing export table")
	}
	if cfg.Driver != DriverDatabricks && cfg.Driver != DriverSnowflake {
		return nil, fmt.Errorf("unsupported gcp export driver %q", cfg.Driver)
	}
	return &cfg, nil
}
