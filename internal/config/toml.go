// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Every field is a
// pointer so an absent value is distinguishable from an explicit zero.
type FileConfig struct {
	WordAccuracy AccuracyConfig `toml:"word_accuracy"`
	Speed        SpeedConfig    `toml:"speed"`
	Widget       WidgetConfig   `toml:"widget"`
	Insight      InsightConfig  `toml:"insight"`
}

// AccuracyConfig maps word-accuracy scorer settings.
type AccuracyConfig struct {
	Threshold      *float64 `toml:"threshold"`
	MinWordLength  *int     `toml:"min-word-length"`
	CorrectPoints  *float64 `toml:"correct-points"`
	IncorrectPoint *float64 `toml:"incorrect-points"`
	TargetScore    *float64 `toml:"target-score"`
	ExtraWords     []string `toml:"extra-words"`
	Languages      []string `toml:"languages"`
}

// SpeedConfig maps speed-session tracker settings.
type SpeedConfig struct {
	BaselineIntervalMs   *int64   `toml:"baseline-interval-ms"`
	IntervalPctThreshold *float64 `toml:"interval-pct-threshold"`
	AccuracyPctThreshold *float64 `toml:"accuracy-pct-threshold"`
	SessionGapMs         *int64   `toml:"session-gap-ms"`
	TargetSessions       *int64   `toml:"target-sessions"`
}

// WidgetConfig maps widget snapshot settings.
type WidgetConfig struct {
	KeyTarget          *float64 `toml:"key-target"`
	SampleTotalRatio   *float64 `toml:"sample-total-ratio"`
	SampleAvgInterval  *float64 `toml:"sample-avg-interval"`
	HandshakeSpeedGate *float64 `toml:"handshake-speed-gate"`
	ProgressPath       *string  `toml:"progress-path"`
}

// InsightConfig maps insight generator settings.
type InsightConfig struct {
	Model       *string  `toml:"model"`
	APIKey      *string  `toml:"api-key"`
	BaseURL     *string  `toml:"base-url"`
	Temperature *float64 `toml:"temperature"`
	TimeoutSec  *int     `toml:"timeout-sec"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an
// error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
