// Package stats computes and renders typing statistics from the summary
// document and the archived speed sessions.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/keywrapped/keywrapped/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics derives WPM and accuracy for one archived speed session.
func SessionMetrics(rec model.SessionRecord) (wpm, accuracy float64) {
	if rec.AvgIntervalMs > 0 {
		wpm = 60000 / rec.AvgIntervalMs
	}
	return wpm, rec.AccuracyPct
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DailyActivity returns the chronological per-day keystroke counts,
// truncated to the most recent limit days when limit is positive.
func DailyActivity(s *model.Summary, limit int) (dates []string, values []float64) {
	dates = make([]string, 0, len(s.DailyActivity))
	for date := range s.DailyActivity {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if limit > 0 && len(dates) > limit {
		dates = dates[len(dates)-limit:]
	}
	values = make([]float64, len(dates))
	for i, date := range dates {
		values[i] = float64(s.DailyActivity[date])
	}
	return dates, values
}

// TopWords returns the most frequent words in descending order, ties broken
// alphabetically.
func TopWords(s *model.Summary, limit int) []string {
	type entry struct {
		word  string
		count int64
	}
	entries := make([]entry, 0, len(s.WordCounts))
	for word, count := range s.WordCounts {
		entries = append(entries, entry{word, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].word < entries[j].word
		}
		return entries[i].count > entries[j].count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.word
	}
	return words
}

// SessionSeries extracts the per-session WPM and accuracy curves in
// chronological order.
func SessionSeries(sessions []model.SessionRecord) (wpms, accs []float64) {
	wpms = make([]float64, len(sessions))
	accs = make([]float64, len(sessions))
	for i, rec := range sessions {
		wpm, acc := SessionMetrics(rec)
		wpms[i] = wpm
		accs[i] = acc
	}
	return wpms, accs
}
