// Package config loads git-insights settings from a config file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/git-insights/internal/temporal"
)

const (
	configName = ".git-insights"
	configType = "yaml"
	envPrefix  = "GIT_INSIGHTS"
)

// Defaults.
const (
	DefaultLedger        = "log"
	DefaultTimelineWeeks = 26
	DefaultHeatmapWeeks  = 52
	DefaultCachePath     = ".git-insights.db"
	DefaultExportPath    = "git-insights.json"
)

// Config holds all configuration settings.
type Config struct {
	Repo    string       `mapstructure:"repo"`
	Workers int          `mapstructure:"workers"`
	Ledger  string       `mapstructure:"ledger"`
	ByEmail bool         `mapstructure:"by_email"`
	GitHub  GitHubConfig `mapstructure:"github"`
	Cache   CacheConfig  `mapstructure:"cache"`
	Weeks   WeeksConfig  `mapstructure:"weeks"`
	Export  ExportConfig `mapstructure:"export"`
}

// GitHubConfig selects a remote repository as the history source.
type GitHubConfig struct {
	Repo  string `mapstructure:"repo"` // owner/name; empty means the local repository
	Token string `mapstructure:"token"`
}

// CacheConfig controls the on-disk blame cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WeeksConfig holds the default windows of the temporal views.
type WeeksConfig struct {
	Timeline int `mapstructure:"timeline"`
	Heatmap  int `mapstructure:"heatmap"`
}

// ExportConfig controls the json command.
type ExportConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
// A .env file in CWD is loaded first, and GITHUB_TOKEN is honored when no
// token is configured.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("repo", ".")
	v.SetDefault("workers", 0)
	v.SetDefault("ledger", DefaultLedger)
	v.SetDefault("by_email", false)
	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", DefaultCachePath)
	v.SetDefault("weeks.timeline", DefaultTimelineWeeks)
	v.SetDefault("weeks.heatmap", DefaultHeatmapWeeks)
	v.SetDefault("export.format", "json")
	v.SetDefault("export.path", DefaultExportPath)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Ledger != "log" && c.Ledger != "shortlog" {
		return fmt.Errorf("ledger must be log or shortlog, got %q", c.Ledger)
	}
	if err := temporal.CheckWeeks(c.Weeks.Timeline); err != nil {
		return fmt.Errorf("weeks.timeline: %w", err)
	}
	if err := temporal.CheckWeeks(c.Weeks.Heatmap); err != nil {
		return fmt.Errorf("weeks.heatmap: %w", err)
	}
	if c.Export.Format != "json" && c.Export.Format != "yaml" {
		return fmt.Errorf("export format must be json or yaml, got %q", c.Export.Format)
	}
	if c.GitHub.Repo != "" && !strings.Contains(c.GitHub.Repo, "/") {
		return fmt.Errorf("github repo must be owner/name, got %q", c.GitHub.Repo)
	}
	return nil
}
