// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "keywrapped", "config.toml")
}

// DefaultDataDir returns the directory holding all summary documents.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), "keywrapped")
}

// DefaultSummaryPath returns the default rolling summary document path.
func DefaultSummaryPath() string {
	return filepath.Join(DefaultDataDir(), "summary.json")
}

// DefaultSampleSummaryPath returns the synthetic sample summary path.
func DefaultSampleSummaryPath() string {
	return filepath.Join(DefaultDataDir(), "sample_summary.json")
}

// DefaultEventLogPath returns the default raw keystroke log path.
func DefaultEventLogPath() string {
	return filepath.Join(DefaultDataDir(), "keystrokes.jsonl")
}

// DefaultProgressPath returns the default widget progress snapshot path.
func DefaultProgressPath() string {
	return filepath.Join(DefaultDataDir(), "widget_progress.json")
}

// DefaultInsightPath returns the default insight document path.
func DefaultInsightPath() string {
	return filepath.Join(DefaultDataDir(), "insight.json")
}

// DefaultFeedPath returns the default insight feed document path.
func DefaultFeedPath() string {
	return filepath.Join(DefaultDataDir(), "insight_feed.json")
}

// DefaultFeedStatePath returns the default insight feed state path.
func DefaultFeedStatePath() string {
	return filepath.Join(DefaultDataDir(), "insight_state.json")
}

// DefaultHealthPath returns the default logger health document path.
func DefaultHealthPath() string {
	return filepath.Join(DefaultDataDir(), "health.json")
}

// DefaultTracePath returns the default diagnostic trace log path.
func DefaultTracePath() string {
	return filepath.Join(DefaultDataDir(), "debug.log")
}

// DefaultSessionDBPath returns the default path for the SQLite session archive.
func DefaultSessionDBPath() string {
	return filepath.Join(DefaultDataDir(), "sessions.db")
}

// DefaultWordfreqCacheDir returns the cache directory for frequency data.
func DefaultWordfreqCacheDir() string {
	return filepath.Join(DefaultDataDir(), "wordfreq")
}

// DefaultLexiconDir returns the directory for user-supplied lexicon files.
func DefaultLexiconDir() string {
	return filepath.Join(XDGConfigHome(), "keywrapped", "lexicons")
}

// DefaultLexiconPath builds the lexicon file path for a language.
func DefaultLexiconPath(lang string) string {
	return filepath.Join(DefaultLexiconDir(), lang+".txt")
}
