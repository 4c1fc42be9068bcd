package summary

import (
	"time"

	"github.com/google/uuid"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/trace"
)

// SessionSink receives committed speed sessions for archival. Implementations
// must tolerate being called once per commit at keystroke rate.
type SessionSink interface {
	Archive(model.SessionRecord) error
}

// speedTracker groups fast consecutive keystrokes into scoring sessions. A
// session is re-segmented whenever the wall-clock gap since its last
// keystroke exceeds the configured session gap; qualifying intervals and
// word outcomes observed in between accumulate into the open session.
type speedTracker struct {
	settings config.SpeedSettings
	trace    *trace.Log
	sink     SessionSink

	active      bool
	start       time.Time
	last        time.Time
	count       int64
	totalMs     int64
	wordCorrect int64
	wordTotal   int64
}

func newSpeedTracker(settings config.SpeedSettings, tr *trace.Log, sink SessionSink) *speedTracker {
	return &speedTracker{settings: settings, trace: tr, sink: sink}
}

// qualifyingCeiling returns the interval below which a keystroke counts as
// fast.
func (t *speedTracker) qualifyingCeiling() float64 {
	return float64(t.settings.BaselineIntervalMs) * t.settings.IntervalPctThreshold / 100
}

// observe folds one finalized keystroke into the tracker, committing the
// open session first when the gap rule fires.
func (t *speedTracker) observe(points *model.SpeedPoints, at time.Time, intervalMs int64) {
	if t.active && at.Sub(t.last).Milliseconds() > t.settings.SessionGapMs {
		t.commit(points)
	}
	if intervalMs <= 0 || float64(intervalMs) >= t.qualifyingCeiling() {
		return
	}
	if !t.active {
		t.active = true
		t.start = at
	}
	t.count++
	t.totalMs += intervalMs
	t.last = at
}

// observeWord folds one scored word outcome into the open session. Words
// typed outside any session are ignored.
func (t *speedTracker) observeWord(correct bool) {
	if !t.active {
		return
	}
	t.wordTotal++
	if correct {
		t.wordCorrect++
	}
}

// flush commits the open session, if any. Called on shutdown.
func (t *speedTracker) flush(points *model.SpeedPoints) {
	if t.active {
		t.commit(points)
	}
}

func (t *speedTracker) commit(points *model.SpeedPoints) {
	avg := 0.0
	if t.count > 0 {
		avg = float64(t.totalMs) / float64(t.count)
	}
	pct := 0.0
	if t.wordTotal > 0 {
		pct = 100 * float64(t.wordCorrect) / float64(t.wordTotal)
	}
	earned := t.count > 0 && pct >= t.settings.AccuracyPctThreshold

	points.Sessions++
	points.LastAvgInterval = avg
	points.LastAccuracyPct = pct
	if earned {
		points.Earned++
		t.trace.Appendf("Speed session committed: avg %.1fms, accuracy %.1f%%, point awarded.", avg, pct)
	} else if t.count > 0 {
		t.trace.Appendf("Speed session committed: avg %.1fms, accuracy %.1f%% below %.1f%%, no point awarded.", avg, pct, t.settings.AccuracyPctThreshold)
	}

	if t.sink != nil && t.count > 0 {
		record := model.SessionRecord{
			ID:            uuid.NewString(),
			StartedAt:     t.start,
			EndedAt:       t.last,
			Keystrokes:    t.count,
			AvgIntervalMs: avg,
			AccuracyPct:   pct,
			Earned:        earned,
		}
		if err := t.sink.Archive(record); err != nil {
			t.trace.Appendf("Failed to archive speed session: %v", err)
		}
	}

	t.active = false
	t.count = 0
	t.totalMs = 0
	t.wordCorrect = 0
	t.wordTotal = 0
}
