package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"loadwatch/domain/calendar"
	"loadwatch/domain/core"
	"loadwatch/domain/risk"
	"loadwatch/domain/session"
	"loadwatch/domain/smoothing"
	"loadwatch/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Horizon   HorizonConfig
	Seasons   []calendar.Season
	Smoothing SmoothingConfig
	Risk      RiskConfig
	Database  DatabaseConfig
	Server    ServerConfig
}

// DataConfig holds input/output file settings
type DataConfig struct {
	SessionsFile string // CSV or XLSX session table
	OutputDir    string // directory for the three CSV artifacts
}

// HorizonConfig is the monitoring date range
type HorizonConfig struct {
	Start core.Day
	End   core.Day
}

// SmoothingConfig holds EWMA window spans per granularity
type SmoothingConfig struct {
	Daily  smoothing.Spans
	Weekly smoothing.Spans
}

// RiskConfig holds classification thresholds and the category mapping
type RiskConfig struct {
	Bounds             risk.Bounds
	ImbalanceThreshold float64
	Categories         map[string][]string
}

// DatabaseConfig holds the optional Postgres sink settings
type DatabaseConfig struct {
	URL string // empty disables the Postgres sink
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it.
// Configuration errors are fatal at startup, never recoverable mid-run.
func Load() (*Config, error) {
	horizon, err := loadHorizon()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load horizon configuration")
	}

	seasons, err := loadSeasons()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load season configuration")
	}

	categories, err := loadCategories()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load category configuration")
	}

	config := &Config{
		Data: DataConfig{
			SessionsFile: getEnvOrDefault("SESSIONS_FILE", "./data/anonymous.csv"),
			OutputDir:    getEnvOrDefault("OUTPUT_DIR", "./data"),
		},
		Horizon: *horizon,
		Seasons: seasons,
		Smoothing: SmoothingConfig{
			Daily: smoothing.Spans{
				Acute:   getEnvIntOrDefault("EWMA_DAILY_ACUTE", 7),
				Chronic: getEnvIntOrDefault("EWMA_DAILY_CHRONIC", 28),
			},
			Weekly: smoothing.Spans{
				Acute:   getEnvIntOrDefault("EWMA_WEEKLY_ACUTE", 1),
				Chronic: getEnvIntOrDefault("EWMA_WEEKLY_CHRONIC", 4),
			},
		},
		Risk: RiskConfig{
			Bounds: risk.Bounds{
				Upper: getEnvFloatOrDefault("ACWR_UPPER", 1.3),
				Lower: getEnvFloatOrDefault("ACWR_LOWER", 0.8),
			},
			ImbalanceThreshold: getEnvFloatOrDefault("IMBALANCE_THRESHOLD", risk.DefaultImbalanceThreshold),
			Categories:         categories,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadHorizon() (*HorizonConfig, error) {
	start, err := parseDay(getEnvOrDefault("HORIZON_START", "2021-07-01"))
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("HORIZON_START: %v", err))
	}
	end, err := parseDay(getEnvOrDefault("HORIZON_END", "2023-06-30"))
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("HORIZON_END: %v", err))
	}
	return &HorizonConfig{Start: start, End: end}, nil
}

// loadSeasons parses SEASONS, a semicolon-separated list of
// name=start..end entries, e.g.
//
//	SEASONS="2021/22=2021-07-01..2022-06-30;2022/23=2022-07-01..2023-06-30"
func loadSeasons() ([]calendar.Season, error) {
	raw := getEnvOrDefault("SEASONS",
		"2021/22=2021-07-01..2022-06-30;2022/23=2022-07-01..2023-06-30")

	var seasons []calendar.Season
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, dates, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SEASONS entry %q: want name=start..end", entry))
		}
		startStr, endStr, ok := strings.Cut(dates, "..")
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SEASONS entry %q: want name=start..end", entry))
		}
		start, err := parseDay(strings.TrimSpace(startStr))
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SEASONS entry %q: %v", entry, err))
		}
		end, err := parseDay(strings.TrimSpace(endStr))
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SEASONS entry %q: %v", entry, err))
		}
		seasons = append(seasons, calendar.Season{
			Name:  strings.TrimSpace(name),
			Start: start,
			End:   end,
		})
	}
	return seasons, nil
}

// loadCategories parses RISK_CATEGORIES, a semicolon-separated list of
// name=metric|metric|... entries. Unset means the canonical mapping.
func loadCategories() (map[string][]string, error) {
	raw := os.Getenv("RISK_CATEGORIES")
	if raw == "" {
		return session.DefaultCategories(), nil
	}

	categories := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, metricList, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, errors.ConfigInvalid(fmt.Sprintf("RISK_CATEGORIES entry %q: want name=metric|metric", entry))
		}
		var metrics []string
		for _, m := range strings.Split(metricList, "|") {
			if m = strings.TrimSpace(m); m != "" {
				metrics = append(metrics, m)
			}
		}
		categories[strings.TrimSpace(name)] = metrics
	}
	return categories, nil
}

func validateConfig(config *Config) error {
	if config.Horizon.End.Before(config.Horizon.Start) {
		return core.ErrInvalidHorizon
	}
	// NewSeasonTable rejects overlapping ranges.
	if _, err := calendar.NewSeasonTable(config.Seasons); err != nil {
		return err
	}
	if err := config.Smoothing.Daily.Validate(); err != nil {
		return fmt.Errorf("daily spans: %w", err)
	}
	if err := config.Smoothing.Weekly.Validate(); err != nil {
		return fmt.Errorf("weekly spans: %w", err)
	}
	// Classifier construction revalidates, but failing here keeps every
	// config error at startup.
	if _, err := risk.NewClassifier(config.Risk.Bounds, config.Risk.Categories, config.Risk.ImbalanceThreshold); err != nil {
		return err
	}
	if config.Data.SessionsFile == "" {
		return errors.ConfigInvalid("SESSIONS_FILE is required")
	}
	return nil
}

func parseDay(s string) (core.Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Day{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return core.DayOf(t), nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
