package snowflake

import (
	"fmt"

	"github.com/snowflakedb/gosnowflake"
	"github.com/spf13/viper"

	"github.com/de-tools/cost-atlas/pkg/store/pricing"
)

type Config struct {
	Account   string `mapstructure:"account" validate:"required"`
	User      string `mapstructure:"user" validate:"required"`
	Password  string `mapstructure:"password" validate:"required"`
	Database  string `mapstructure:"database"`
	Warehouse string `mapstructure:"warehouse"`
	Role      string `mapstructure:"role"`

	CreditPrice     float64            `mapstructure:"credit_price"`
	Currency        string             `mapstructure:"currency"`
	WarehousePrices map[string]float64 `mapstructure:"warehouse_prices"`
}

// LoadConfig loads configuration from the specified profile path
func LoadConfig(profilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(profilePath)
	v.SetDefault("credit_price", pricing.DefaultCreditPrice)
	v.SetDefault("currency", pricing.DefaultCurrency)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse snowflake config: %w", err)
	}
	return &config, nil
}

// DSN renders the gosnowflake connection string
func (c *Config) DSN() (string, error) {
	if c.Account == "" || c.User == "" {
		return "", fmt.Errorf("snowflake config requires account and user")
	}
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Database:  c.Database,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create DSN: %w", err)
	}
	return dsn, nil
}

// Prices returns the credit rate card of the account
func (c *Config) Prices() pricing.Store {
	overrides := make(map[string]pricing.Price, len(c.WarehousePrices))
	for warehouse, price := range c.WarehousePrices {
		overrides[warehouse] = pricing.Price{PricePerUnit: price, CurrencyCode: c.Currency}
	}
	return pricing.NewStore(pricing.Price{PricePerUnit: c.CreditPrice, CurrencyCode: c.Currency}, overrides)
}
