// Package model defines the shared summary document structures.
package model

import (
	"runtime"
	"time"
)

// Category classifies a key press as a character key or an action key.
type Category string

// Key categories. Character keys (including digits and punctuation) are
// "letter"; named keys such as space, shift, and enter are "action".
const (
	CategoryLetter Category = "letter"
	CategoryAction Category = "action"
)

// Behaviors flags behavioral patterns detected on a single key event.
type Behaviors struct {
	RageClick bool `json:"rage_click,omitempty"`
	LongPause bool `json:"long_pause,omitempty"`
}

// KeyEvent is one finalized key interaction, created on key release once the
// press duration is known.
type KeyEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Key        string    `json:"key"`
	Category   Category  `json:"category"`
	IntervalMs int64     `json:"interval_ms"`
	DurationMs *int64    `json:"duration_ms"`
	Behaviors  Behaviors `json:"behaviors"`
}

// DateLabel returns the UTC calendar date bucket for the event.
func (e KeyEvent) DateLabel() string {
	return e.Timestamp.UTC().Format("2006-01-02")
}

// RunningStat is an exact running accumulator for millisecond samples. The
// average is computed on demand from count and total so repeated updates do
// not compound rounding error.
type RunningStat struct {
	Count   int64  `json:"count"`
	TotalMs int64  `json:"total_ms"`
	MaxMs   int64  `json:"max_ms"`
	MinMs   *int64 `json:"min_ms"`
}

// Observe folds one sample into the accumulator.
func (s *RunningStat) Observe(ms int64) {
	s.Count++
	s.TotalMs += ms
	if ms > s.MaxMs {
		s.MaxMs = ms
	}
	if s.MinMs == nil || ms < *s.MinMs {
		v := ms
		s.MinMs = &v
	}
}

// AvgMs returns the mean sample, or 0 when nothing was observed.
func (s RunningStat) AvgMs() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.TotalMs) / float64(s.Count)
}

// WordDurationStat tracks completion-time statistics for one word.
type WordDurationStat struct {
	Count     int64  `json:"count"`
	TotalMs   int64  `json:"total_ms"`
	FastestMs *int64 `json:"fastest_ms"`
	SlowestMs int64  `json:"slowest_ms"`
}

// Observe folds one completed typing of the word into the stat.
func (s *WordDurationStat) Observe(ms int64) {
	s.Count++
	s.TotalMs += ms
	if ms > s.SlowestMs {
		s.SlowestMs = ms
	}
	if s.FastestMs == nil || ms < *s.FastestMs {
		v := ms
		s.FastestMs = &v
	}
}

// AvgMs returns the mean completion time, or 0 when nothing was observed.
func (s WordDurationStat) AvgMs() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.TotalMs) / float64(s.Count)
}

// WordShapeSample is the per-letter timing profile of one completed typing of
// a word. The arrays are ragged across words since word length varies.
type WordShapeSample struct {
	Durations []int64 `json:"durations"`
	Intervals []int64 `json:"intervals"`
}

// TypingProfile is a derived snapshot recomputed from the raw accumulators
// after every mutation. It is never independently mutated.
type TypingProfile struct {
	AvgInterval      float64 `json:"avg_interval"`
	AvgPressLength   float64 `json:"avg_press_length"`
	WPM              float64 `json:"wpm"`
	WordShapeSamples int64   `json:"avg_word_shape_samples"`
	LongPauseRate    float64 `json:"long_pause_rate"`
}

// WordAccuracy is the bounded plausibility score with its tallies.
type WordAccuracy struct {
	Score     float64 `json:"score"`
	Correct   int64   `json:"correct"`
	Incorrect int64   `json:"incorrect"`
}

// SpeedPoints tracks the session-based speed achievement counter.
type SpeedPoints struct {
	Earned          int64   `json:"earned"`
	Sessions        int64   `json:"sessions"`
	LastAvgInterval float64 `json:"last_avg_interval"`
	LastAccuracyPct float64 `json:"last_accuracy_pct"`
	TargetSessions  int64   `json:"target_sessions"`
}

// DeviceMeta describes the machine the summary was recorded on. It survives
// a summary reset.
type DeviceMeta struct {
	Platform string `json:"platform"`
	Machine  string `json:"machine"`
}

// CaptureDeviceMeta reports the current machine's metadata.
func CaptureDeviceMeta() DeviceMeta {
	return DeviceMeta{Platform: runtime.GOOS, Machine: runtime.GOARCH}
}

// Summary is the single mutable aggregate owned by the accumulator and
// persisted as a JSON document.
type Summary struct {
	TotalEvents int64 `json:"total_events"`
	Letters     int64 `json:"letters"`
	Actions     int64 `json:"actions"`
	Words       int64 `json:"words"`
	RageClicks  int64 `json:"rage_clicks"`
	LongPauses  int64 `json:"long_pauses"`

	FirstEvent *string `json:"first_event"`
	LastEvent  *string `json:"last_event"`

	KeyCounts       map[string]int64            `json:"key_counts"`
	DailyActivity   map[string]int64            `json:"daily_activity"`
	DailyRage       map[string]int64            `json:"daily_rage"`
	DailyWordCounts map[string]map[string]int64 `json:"daily_word_counts"`

	KeyPairs        map[string]map[string]int64  `json:"key_pairs"`
	KeyPressLengths map[string]*RunningStat      `json:"key_press_lengths"`
	IntervalStats   RunningStat                  `json:"interval_stats"`
	WordCounts      map[string]int64             `json:"word_counts"`
	WordPairs       map[string]map[string]int64  `json:"word_pairs"`
	WordDurations   map[string]*WordDurationStat `json:"word_durations"`
	WordShapes      map[string][]WordShapeSample `json:"word_shapes"`

	WordAccuracy  WordAccuracy  `json:"word_accuracy"`
	SpeedPoints   SpeedPoints   `json:"speed_points"`
	TypingProfile TypingProfile `json:"typing_profile"`
	DeviceMeta    DeviceMeta    `json:"device_meta"`
}

// NewSummary returns a summary with every substructure at its zero value and
// the current device metadata captured.
func NewSummary() *Summary {
	s := &Summary{}
	s.EnsureDefaults()
	return s
}

// EnsureDefaults synthesizes missing substructures after loading a document
// written by an older or partially persisted schema. Scalar counters keep
// whatever value the document carried.
func (s *Summary) EnsureDefaults() {
	if s.KeyCounts == nil {
		s.KeyCounts = map[string]int64{}
	}
	if s.DailyActivity == nil {
		s.DailyActivity = map[string]int64{}
	}
	if s.DailyRage == nil {
		s.DailyRage = map[string]int64{}
	}
	if s.DailyWordCounts == nil {
		s.DailyWordCounts = map[string]map[string]int64{}
	}
	if s.KeyPairs == nil {
		s.KeyPairs = map[string]map[string]int64{}
	}
	if s.KeyPressLengths == nil {
		s.KeyPressLengths = map[string]*RunningStat{}
	}
	if s.WordCounts == nil {
		s.WordCounts = map[string]int64{}
	}
	if s.WordPairs == nil {
		s.WordPairs = map[string]map[string]int64{}
	}
	if s.WordDurations == nil {
		s.WordDurations = map[string]*WordDurationStat{}
	}
	if s.WordShapes == nil {
		s.WordShapes = map[string][]WordShapeSample{}
	}
	s.DeviceMeta = CaptureDeviceMeta()
}

// Reset zeroes every mutable field while preserving device metadata.
func (s *Summary) Reset() {
	meta := s.DeviceMeta
	*s = Summary{}
	s.EnsureDefaults()
	s.DeviceMeta = meta
}

// Snapshot is the bounded widget progress document derived from a summary.
type Snapshot struct {
	Timestamp          int64   `json:"timestamp"`
	Mode               string  `json:"mode"`
	KeyProgress        float64 `json:"keyProgress"`
	KeyTarget          float64 `json:"keyTarget"`
	SpeedProgress      float64 `json:"speedProgress"`
	SpeedTarget        float64 `json:"speedTarget"`
	HandshakeProgress  float64 `json:"handshakeProgress"`
	HandshakeTarget    float64 `json:"handshakeTarget"`
	WordAccuracyScore  float64 `json:"wordAccuracyScore"`
	WordAccuracyTarget float64 `json:"wordAccuracyTarget"`
}

// SessionRecord is one committed speed session as archived to SQLite.
type SessionRecord struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time
	Keystrokes    int64
	AvgIntervalMs float64
	AccuracyPct   float64
	Earned        bool
}
