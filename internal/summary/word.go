package summary

import (
	"strings"
	"time"

	"github.com/keywrapped/keywrapped/internal/model"
)

// letterTiming is the dwell and latency of one letter inside the current
// word, captured at release time.
type letterTiming struct {
	durationMs int64
	intervalMs int64
}

// wordTracker holds the in-progress word segmentation state. The previous
// word pointer models semantic continuity and is dropped on long pauses,
// unlike the raw key adjacency chain which survives them.
type wordTracker struct {
	buffer   strings.Builder
	start    *time.Time
	last     *time.Time
	previous string
	timings  []letterTiming
}

// bufferLetter appends one lowercase character to the current word.
func (w *wordTracker) bufferLetter(ch string, at time.Time) {
	w.buffer.WriteString(strings.ToLower(ch))
	if w.start == nil {
		t := at
		w.start = &t
	}
	t := at
	w.last = &t
}

// addTiming records the dwell/latency of a released letter key.
func (w *wordTracker) addTiming(durationMs, intervalMs int64) {
	w.timings = append(w.timings, letterTiming{durationMs: durationMs, intervalMs: intervalMs})
}

// take returns the buffered word with its span and timings, clearing the
// buffer state. The previous-word pointer is managed by the caller since
// it must survive until word pairs are recorded.
func (w *wordTracker) take() (word string, start, last *time.Time, timings []letterTiming) {
	word = w.buffer.String()
	start, last = w.start, w.last
	timings = w.timings

	w.buffer.Reset()
	w.start = nil
	w.last = nil
	w.timings = nil
	return word, start, last, timings
}

// durationMs returns the word's press-to-press span in milliseconds.
func wordDurationMs(start, last *time.Time) (int64, bool) {
	if start == nil || last == nil {
		return 0, false
	}
	return last.Sub(*start).Milliseconds(), true
}

// shapeSample converts letter timings to a persisted word shape sample.
func shapeSample(timings []letterTiming) model.WordShapeSample {
	sample := model.WordShapeSample{
		Durations: make([]int64, 0, len(timings)),
		Intervals: make([]int64, 0, len(timings)),
	}
	for _, t := range timings {
		sample.Durations = append(sample.Durations, t.durationMs)
		sample.Intervals = append(sample.Intervals, t.intervalMs)
	}
	return sample
}
