package databricks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	cfgregistry "github.com/de-tools/cost-atlas/pkg/services/config"
)

const defaultPort = "443"

type Config struct {
	Host     string `mapstructure:"host" validate:"required"`
	Token    string `mapstructure:"token" validate:"required"`
	HTTPPath string `mapstructure:"http_path" validate:"required"`
	Catalog  string `mapstructure:"catalog"`
	Schema   string `mapstructure:"schema"`
}

// LoadConfig reads a YAML connection profile
func LoadConfig(profilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse databricks config: %w", err)
	}
	return &cfg, nil
}

// LoadProfile reads a named profile from a .databrickscfg registry
func LoadProfile(ctx context.Context, registry cfgregistry.Registry, profile string) (*Config, error) {
	sdkCfg, err := registry.GetConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	httpPath, err := registry.GetHTTPPath(ctx, profile)
	if err != nil {
		return nil, err
	}
	return &Config{
		Host:     sdkCfg.Host,
		Token:    sdkCfg.Token,
		HTTPPath: httpPath,
	}, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if c.HTTPPath == "" {
		missing = append(missing, "http_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("databricks config is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN renders the databricks-sql-go connection string
func (c *Config) DSN() (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}

	host := strings.TrimSuffix(c.Host, "/")
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	if !strings.Contains(host, ":") {
		host = host + ":" + defaultPort
	}
	httpPath := c.HTTPPath
	if !strings.HasPrefix(httpPath, "/") {
		httpPath = "/" + httpPath
	}

	dsn := fmt.Sprintf("token:%s@%s%s", c.Token, host, httpPath)

	params := url.Values{}
	if c.Catalog != "" {
		params.Set("catalog", c.Catalog)
	}
	if c.Schema != "" {
		params.Set("schema", c.Schema)
	}
	if qp := params.Encode(); qp != "" {
		dsn = dsn + "?" + qp
	}
	return dsn, nil
}
