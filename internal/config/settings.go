package config

import "time"

// Defaults for every configurable value. Absence of the config file yields
// exactly these.
const (
	DefaultAccuracyThreshold = 2.5
	DefaultMinWordLength     = 1
	DefaultCorrectPoints     = 1.0
	DefaultIncorrectPoints   = -2.0
	DefaultTargetScore       = 120.0

	DefaultBaselineIntervalMs   = int64(320)
	DefaultIntervalPctThreshold = 90.0
	DefaultAccuracyPctThreshold = 80.0
	DefaultSessionGapMs         = int64(2000)
	DefaultTargetSessions       = int64(40)

	DefaultKeyTarget          = 5000.0
	DefaultSampleTotalRatio   = 0.05
	DefaultSampleAvgInterval  = 210.0
	DefaultHandshakeSpeedGate = 250.0

	DefaultInsightModel   = "gpt-4o-mini"
	DefaultInsightBaseURL = "https://api.openai.com"
	DefaultInsightTemp    = 0.4
	DefaultInsightTimeout = 45 * time.Second
)

// AccuracySettings are the effective word-accuracy scorer settings.
type AccuracySettings struct {
	Threshold       float64
	MinWordLength   int
	CorrectPoints   float64
	IncorrectPoints float64
	TargetScore     float64
	ExtraWords      []string
	Languages       []string
}

// SpeedSettings are the effective speed-session tracker settings.
type SpeedSettings struct {
	BaselineIntervalMs   int64
	IntervalPctThreshold float64
	AccuracyPctThreshold float64
	SessionGapMs         int64
	TargetSessions       int64
}

// WidgetSettings are the effective widget snapshot settings.
type WidgetSettings struct {
	KeyTarget          float64
	SampleTotalRatio   float64
	SampleAvgInterval  float64
	HandshakeSpeedGate float64
	ProgressPath       string
}

// InsightSettings are the effective insight generator settings.
type InsightSettings struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// ResolveAccuracy overlays the file config onto the hardcoded defaults.
func (c FileConfig) ResolveAccuracy() AccuracySettings {
	s := AccuracySettings{
		Threshold:       DefaultAccuracyThreshold,
		MinWordLength:   DefaultMinWordLength,
		CorrectPoints:   DefaultCorrectPoints,
		IncorrectPoints: DefaultIncorrectPoints,
		TargetScore:     DefaultTargetScore,
		Languages:       []string{"en"},
	}
	a := c.WordAccuracy
	if a.Threshold != nil {
		s.Threshold = *a.Threshold
	}
	if a.MinWordLength != nil {
		s.MinWordLength = *a.MinWordLength
	}
	if a.CorrectPoints != nil {
		s.CorrectPoints = *a.CorrectPoints
	}
	if a.IncorrectPoint != nil {
		s.IncorrectPoints = *a.IncorrectPoint
	}
	if a.TargetScore != nil {
		s.TargetScore = *a.TargetScore
	}
	if len(a.ExtraWords) > 0 {
		s.ExtraWords = append([]string(nil), a.ExtraWords...)
	}
	if len(a.Languages) > 0 {
		s.Languages = append([]string(nil), a.Languages...)
	}
	return s
}

// ResolveSpeed overlays the file config onto the hardcoded defaults.
func (c FileConfig) ResolveSpeed() SpeedSettings {
	s := SpeedSettings{
		BaselineIntervalMs:   DefaultBaselineIntervalMs,
		IntervalPctThreshold: DefaultIntervalPctThreshold,
		AccuracyPctThreshold: DefaultAccuracyPctThreshold,
		SessionGapMs:         DefaultSessionGapMs,
		TargetSessions:       DefaultTargetSessions,
	}
	v := c.Speed
	if v.BaselineIntervalMs != nil {
		s.BaselineIntervalMs = *v.BaselineIntervalMs
	}
	if v.IntervalPctThreshold != nil {
		s.IntervalPctThreshold = *v.IntervalPctThreshold
	}
	if v.AccuracyPctThreshold != nil {
		s.AccuracyPctThreshold = *v.AccuracyPctThreshold
	}
	if v.SessionGapMs != nil {
		s.SessionGapMs = *v.SessionGapMs
	}
	if v.TargetSessions != nil {
		s.TargetSessions = *v.TargetSessions
	}
	return s
}

// ResolveWidget overlays the file config onto the hardcoded defaults.
func (c FileConfig) ResolveWidget() WidgetSettings {
	s := WidgetSettings{
		KeyTarget:          DefaultKeyTarget,
		SampleTotalRatio:   DefaultSampleTotalRatio,
		SampleAvgInterval:  DefaultSampleAvgInterval,
		HandshakeSpeedGate: DefaultHandshakeSpeedGate,
		ProgressPath:       DefaultProgressPath(),
	}
	v := c.Widget
	if v.KeyTarget != nil {
		s.KeyTarget = *v.KeyTarget
	}
	if v.SampleTotalRatio != nil {
		s.SampleTotalRatio = *v.SampleTotalRatio
	}
	if v.SampleAvgInterval != nil {
		s.SampleAvgInterval = *v.SampleAvgInterval
	}
	if v.HandshakeSpeedGate != nil {
		s.HandshakeSpeedGate = *v.HandshakeSpeedGate
	}
	if v.ProgressPath != nil && *v.ProgressPath != "" {
		s.ProgressPath = *v.ProgressPath
	}
	return s
}

// ResolveInsight overlays the file config onto the hardcoded defaults. The
// API key falls back to the OPENAI_API_KEY environment variable.
func (c FileConfig) ResolveInsight(envAPIKey string) InsightSettings {
	s := InsightSettings{
		Model:       DefaultInsightModel,
		BaseURL:     DefaultInsightBaseURL,
		Temperature: DefaultInsightTemp,
		Timeout:     DefaultInsightTimeout,
	}
	v := c.Insight
	if v.Model != nil && *v.Model != "" {
		s.Model = *v.Model
	}
	if v.APIKey != nil {
		s.APIKey = *v.APIKey
	}
	if s.APIKey == "" {
		s.APIKey = envAPIKey
	}
	if v.BaseURL != nil && *v.BaseURL != "" {
		s.BaseURL = *v.BaseURL
	}
	if v.Temperature != nil {
		s.Temperature = *v.Temperature
	}
	if v.TimeoutSec != nil && *v.TimeoutSec > 0 {
		s.Timeout = time.Duration(*v.TimeoutSec) * time.Second
	}
	return s
}
