// Package config provides configuration management for the analysis toolkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Log        LogConfig        `mapstructure:"log"`
	Store      StoreConfig      `mapstructure:"store"`
	UI         UIConfig         `mapstructure:"ui"`
}

// AnalysisConfig holds detector and indicator tunables.
type AnalysisConfig struct {
	ExtremaOrder   int     `mapstructure:"extrema_order"`
	ClusterTolPct  float64 `mapstructure:"cluster_tolerance_pct"`
	MinTouches     int     `mapstructure:"min_touches"`
	VolumeLookback int     `mapstructure:"volume_lookback"`
	ATRPeriod      int     `mapstructure:"atr_period"`
	RSIPeriod      int     `mapstructure:"rsi_period"`
}

// AggregatorConfig holds the component weights for signal aggregation.
type AggregatorConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds output-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stocksense"
	}
	return filepath.Join(home, ".config", "stocksense")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultConfigDir()
	return &Config{
		Analysis: AnalysisConfig{
			ExtremaOrder:   5,
			ClusterTolPct:  1.5,
			MinTouches:     2,
			VolumeLookback: 20,
			ATRPeriod:      14,
			RSIPeriod:      14,
		},
		Aggregator: AggregatorConfig{},
		Log: LogConfig{
			Level:    "info",
			Console:  true,
			File:     true,
			FilePath: filepath.Join(dir, "logs", "stocksense.log"),
		},
		Store: StoreConfig{
			Path: filepath.Join(dir, "stocksense.db"),
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "02-Jan-2006",
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing config
// file is not an error: a template is written and the defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("analysis.extrema_order", cfg.Analysis.ExtremaOrder)
	v.SetDefault("analysis.cluster_tolerance_pct", cfg.Analysis.ClusterTolPct)
	v.SetDefault("analysis.min_touches", cfg.Analysis.MinTouches)
	v.SetDefault("analysis.volume_lookback", cfg.Analysis.VolumeLookback)
	v.SetDefault("analysis.atr_period", cfg.Analysis.ATRPeriod)
	v.SetDefault("analysis.rsi_period", cfg.Analysis.RSIPeriod)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.console", cfg.Log.Console)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.file_path", cfg.Log.FilePath)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.ExtremaOrder < 1 {
		return fmt.Errorf("extrema_order must be at least 1")
	}
	if c.Analysis.ClusterTolPct <= 0 {
		return fmt.Errorf("cluster_tolerance_pct must be positive")
	}
	if c.Analysis.MinTouches < 1 {
		return fmt.Errorf("min_touches must be at least 1")
	}
	if c.Analysis.VolumeLookback < 2 {
		return fmt.Errorf("volume_lookback must be at least 2")
	}
	if c.Analysis.ATRPeriod < 1 || c.Analysis.RSIPeriod < 1 {
		return fmt.Errorf("indicator periods must be positive")
	}
	for name, w := range c.Aggregator.Weights {
		if w < 0 {
			return fmt.Errorf("aggregator weight for %s must be non-negative", name)
		}
	}
	return nil
}
