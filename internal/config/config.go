package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"LaborPulse/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Series []model.Series `yaml:"series"`
	Source struct {
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Periods           int           `yaml:"periods"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"source"`
	Dataset struct {
		Path          string `yaml:"path"`
		SeedStartYear int    `yaml:"seed_start_year"`
	} `yaml:"dataset"`
	Git struct {
		Enabled     bool   `yaml:"enabled"`
		RepoDir     string `yaml:"repo_dir"`
		AuthorName  string `yaml:"author_name"`
		AuthorEmail string `yaml:"author_email"`
	} `yaml:"git"`
	Schedule struct {
		Enabled     bool   `yaml:"enabled"`
		MonthlyCron string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	Dashboard struct {
		Addr          string `yaml:"addr"`
		DefaultMonths int    `yaml:"default_months"`
	} `yaml:"dashboard"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Bounds of the dashboard history window, in months.
const (
	MinMonths = 12
	MaxMonths = 120
)

// MaxPeriods caps source.periods at the longest window one keyed request covers.
const MaxPeriods = 240

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BLS_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("BLS_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_MONTHLY"); v != "" {
		cfg.Schedule.MonthlyCron = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("GIT_COMMIT"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse GIT_COMMIT: %w", err)
		}
		cfg.Git.Enabled = enabled
	}
	if v := os.Getenv("SCHEDULE"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse SCHEDULE: %w", err)
		}
		cfg.Schedule.Enabled = enabled
	}

	// Defaults
	if len(cfg.Series) == 0 {
		cfg.Series = append([]model.Series(nil), model.DefaultSeries...)
	}
	if cfg.Source.Periods == 0 {
		cfg.Source.Periods = 12
	}
	if cfg.Source.RequestsPerSecond == 0 {
		cfg.Source.RequestsPerSecond = 1
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 30 * time.Second
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = "data/bls_labor_data.csv"
	}
	if cfg.Dataset.SeedStartYear == 0 {
		cfg.Dataset.SeedStartYear = 2015
	}
	if cfg.Git.RepoDir == "" {
		cfg.Git.RepoDir = "."
	}
	if cfg.Git.AuthorName == "" {
		cfg.Git.AuthorName = "laborpulse-bot"
	}
	if cfg.Git.AuthorEmail == "" {
		cfg.Git.AuthorEmail = "laborpulse-bot@users.noreply.github.com"
	}
	if cfg.Schedule.MonthlyCron == "" {
		// BLS publishes the Employment Situation early in the month
		cfg.Schedule.MonthlyCron = "0 0 14 8 * *"
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = ":8080"
	}
	if cfg.Dashboard.DefaultMonths == 0 {
		cfg.Dashboard.DefaultMonths = 60
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Series))
	for _, s := range c.Series {
		if s.Code == "" {
			return fmt.Errorf("series code is required")
		}
		if seen[s.Code] {
			return fmt.Errorf("series %s is listed twice", s.Code)
		}
		seen[s.Code] = true
	}
	if c.Source.Periods < 1 || c.Source.Periods > MaxPeriods {
		return fmt.Errorf("source.periods must be between 1 and %d", MaxPeriods)
	}
	if c.Source.RequestsPerSecond < 0 {
		return fmt.Errorf("source.requests_per_second must not be negative")
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if c.Dataset.SeedStartYear < 1900 {
		return fmt.Errorf("dataset.seed_start_year is out of range")
	}
	if c.Dashboard.DefaultMonths < MinMonths || c.Dashboard.DefaultMonths > MaxMonths {
		return fmt.Errorf("dashboard.default_months must be between %d and %d", MinMonths, MaxMonths)
	}
	return nil
}
