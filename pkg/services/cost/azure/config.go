package azure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"gopkg.in/ini.v1"
)

const (
	DefaultProfile = "default"
)

type Config struct {
	SubscriptionID string
	TenantID       string
	Scope          string // overrides the subscription scope, e.g. a billing account
	Currency       string
}

// DefaultScope returns the configured scope or the subscription scope
func (c *Config) DefaultScope() string {
	if c.Scope != "" {
		return c.Scope
	}
	return fmt.Sprintf("/subscriptions/%s", c.SubscriptionID)
}

// LoadConfig reads the profile from ~/.azure/config
func LoadConfig(_ context.Context, profile string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("unable to get home directory: %w", err)
	}
	return LoadConfigFile(filepath.Join(homeDir, ".azure", "config"), profile)
}

func LoadConfigFile(path, profile string) (*Config, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found in Azure config: %w", profile, err)
	}

	config := &Config{
		SubscriptionID: section.Key("subscription").String(),
		TenantID:       section.Key("tenant").String(),
		Scope:          section.Key("scope").String(),
		Currency:       section.Key("currency").MustString("USD"),
	}

	if config.SubscriptionID == "" && config.Scope == "" {
		return nil, fmt.Errorf("neither subscription nor scope found in profile %s", profile)
	}
	return config, nil
}

// NewCredential uses the SDK default credential chain, pinned to the profile tenant when set
func NewCredential(cfg *Config) (azcore.TokenCredential, error) {
	opts := &azidentity.DefaultAzureCredentialOptions{TenantID: cfg.TenantID}
	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return cred, nil
}
