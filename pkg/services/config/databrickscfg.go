package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/databricks/databricks-sdk-go/config"
	"gopkg.in/ini.v1"
)

// Registry reads connection profiles from a .databrickscfg style ini file
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetConfig(ctx context.Context, profile string) (*config.Config, error)
	GetHTTPPath(ctx context.Context, profile string) (string, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// DefaultDatabricksConfigPath returns ~/.databrickscfg
func DefaultDatabricksConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".databrickscfg"), nil
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) section(profile string) (*ini.Section, error) {
	if profile == "" {
		profile = ini.DefaultSection
	}
	section, err := cr.cfg.GetSection(profile)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}
	return section, nil
}

func (cr *cfgRegistry) GetConfig(_ context.Context, profile string) (*config.Config, error) {
	section, err := cr.section(profile)
	if err != nil {
		return nil, err
	}

	host := section.Key("host").String()
	token := section.Key("token").String()
	if host == "" {
		return nil, fmt.Errorf("profile %s has no host", profile)
	}

	return &config.Config{
		Host:  host,
		Token: token,
	}, nil
}

// GetHTTPPath returns the SQL warehouse path of the profile, built from warehouse_id when http_path is absent
func (cr *cfgRegistry) GetHTTPPath(_ context.Context, profile string) (string, error) {
	section, err := cr.section(profile)
	if err != nil {
		return "", err
	}
	if path := section.Key("http_path").String(); path != "" {
		return path, nil
	}
	if id := section.Key("warehouse_id").String(); id != "" {
		return "/sql/1.0/warehouses/" + id, nil
	}
	return "", fmt.Errorf("profile %s has neither http_path nor warehouse_id", profile)
}
