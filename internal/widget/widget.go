// Package widget derives the bounded dashboard progress snapshot from a
// summary document.
package widget

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
)

// referenceLayout is the 26-key reference row used for handshake distance.
const referenceLayout = "qwertyuiopasdfghjklzxcvbnm"

const (
	speedTarget         = 120.0
	handshakeTarget     = 80.0
	handshakeMinReach   = 4
	handshakeThreshold  = 250.0
	accuracyScoreTarget = 120.0
)

// Mode selects how raw counters are presented.
type Mode string

// Snapshot display modes. Sample mode rescales the displayed counters for
// demo dashboards and never mutates the summary document.
const (
	ModeReal   Mode = "real"
	ModeSample Mode = "sample"
)

// Options configures snapshot building.
type Options struct {
	Mode     Mode
	Settings config.WidgetSettings
	// Now stamps the snapshot; nil means time.Now.
	Now func() time.Time
}

// BuildSnapshot is a pure transform of the summary into the bounded
// progress document.
func BuildSnapshot(s *model.Summary, opts Options) model.Snapshot {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeReal
	}
	settings := opts.Settings
	if settings.KeyTarget == 0 {
		settings = config.FileConfig{}.ResolveWidget()
	}

	totalKeys := float64(s.TotalEvents)
	avgInterval := s.TypingProfile.AvgInterval
	if mode == ModeSample {
		totalKeys = math.Round(totalKeys * settings.SampleTotalRatio)
		avgInterval = settings.SampleAvgInterval
	}

	return model.Snapshot{
		Timestamp:          now().Unix(),
		Mode:               string(mode),
		KeyProgress:        totalKeys,
		KeyTarget:          settings.KeyTarget,
		SpeedProgress:      speedScore(avgInterval),
		SpeedTarget:        speedTarget,
		HandshakeProgress:  handshakeScore(s.KeyPairs, settings.HandshakeSpeedGate, avgInterval),
		HandshakeTarget:    handshakeTarget,
		WordAccuracyScore:  clampScore(s.WordAccuracy.Score),
		WordAccuracyTarget: accuracyScoreTarget,
	}
}

// Refresh loads the summary, builds a snapshot, and persists it to the
// progress document.
func Refresh(summaryPath string, opts Options) (model.Snapshot, error) {
	s := docstore.LoadSummary(summaryPath)
	snapshot := BuildSnapshot(s, opts)
	if err := docstore.WriteJSON(opts.Settings.ProgressPath, snapshot); err != nil {
		return model.Snapshot{}, err
	}
	return snapshot, nil
}

func speedScore(avgIntervalMs float64) float64 {
	if avgIntervalMs <= 0 {
		return 0
	}
	return math.Min(speedTarget, 60000/avgIntervalMs)
}

// handshakeScore sums adjacency counts between keys at least four positions
// apart on the reference layout. The sum only accrues while overall speed is
// still below the grace threshold: the metric proxies layout inefficiency,
// which stops being meaningful once the typist is fast.
func handshakeScore(keyPairs map[string]map[string]int64, threshold, speedRef float64) float64 {
	if threshold == 0 {
		threshold = handshakeThreshold
	}
	var score int64
	for src, targets := range keyPairs {
		srcIndex, ok := layoutIndex(src)
		if !ok {
			continue
		}
		for dst, count := range targets {
			dstIndex, ok := layoutIndex(dst)
			if !ok {
				continue
			}
			if abs(srcIndex-dstIndex) >= handshakeMinReach && (speedRef < threshold || speedRef == 0) {
				score += count
			}
		}
	}
	return math.Min(float64(score), handshakeTarget)
}

// layoutIndex maps a key's first rune onto the reference layout.
func layoutIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	first, _ := utf8.DecodeRuneInString(key)
	idx := strings.IndexRune(referenceLayout, unicode.ToLower(first))
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

func clampScore(score float64) float64 {
	return math.Max(0, math.Min(score, accuracyScoreTarget))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
