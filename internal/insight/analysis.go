// Package insight turns summary statistics into narrative analysis text,
// via an external model when configured and a local heuristic otherwise.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/keywrapped/keywrapped/internal/model"
)

type wordCount struct {
	Word  string
	Count int64
}

// topWords returns the most typed words, ties broken alphabetically so the
// output is deterministic.
func topWords(s *model.Summary, limit int) []wordCount {
	entries := make([]wordCount, 0, len(s.WordCounts))
	for word, count := range s.WordCounts {
		entries = append(entries, wordCount{Word: word, Count: count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

type wordAvg struct {
	Word  string
	AvgMs int64
}

// fastestWords returns words with the lowest average completion time.
func fastestWords(s *model.Summary, limit int) []wordAvg {
	entries := make([]wordAvg, 0, len(s.WordDurations))
	for word, stat := range s.WordDurations {
		if stat == nil || stat.Count == 0 {
			continue
		}
		entries = append(entries, wordAvg{Word: word, AvgMs: int64(math.Round(stat.AvgMs()))})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AvgMs != entries[j].AvgMs {
			return entries[i].AvgMs < entries[j].AvgMs
		}
		return entries[i].Word < entries[j].Word
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// rageDay returns the date with the most rage bursts.
func rageDay(s *model.Summary) (string, int64, bool) {
	var bestDate string
	var bestCount int64
	for date, count := range s.DailyRage {
		if count > bestCount || (count == bestCount && bestCount > 0 && date < bestDate) {
			bestDate = date
			bestCount = count
		}
	}
	return bestDate, bestCount, bestCount > 0
}

type wordDay struct {
	Date     string
	Total    int64
	TopWord  string
	TopValue int64
}

// bestWordDay returns the busiest word day with its most typed word.
func bestWordDay(s *model.Summary) (wordDay, bool) {
	var best wordDay
	dates := make([]string, 0, len(s.DailyWordCounts))
	for date := range s.DailyWordCounts {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		counts := s.DailyWordCounts[date]
		if len(counts) == 0 {
			continue
		}
		var total, topValue int64
		var topWord string
		for word, count := range counts {
			total += count
			if count > topValue || (count == topValue && word < topWord) {
				topWord = word
				topValue = count
			}
		}
		if total > best.Total {
			best = wordDay{Date: date, Total: total, TopWord: topWord, TopValue: topValue}
		}
	}
	return best, best.Date != ""
}

type profile struct {
	AvgInterval    float64
	AvgPressLength float64
	WPM            float64
	LongPauseRate  float64
}

// deriveProfile reads the stored typing profile, recomputing each value
// from the raw accumulators when the stored one is missing. Older summary
// documents may carry raw stats without a profile.
func deriveProfile(s *model.Summary) profile {
	avgInterval := s.TypingProfile.AvgInterval
	if avgInterval == 0 && s.IntervalStats.Count > 0 {
		avgInterval = s.IntervalStats.AvgMs()
	}
	avgPress := s.TypingProfile.AvgPressLength
	if avgPress == 0 {
		var total, count int64
		for _, stat := range s.KeyPressLengths {
			total += stat.TotalMs
			count += stat.Count
		}
		if count > 0 {
			avgPress = float64(total) / float64(count)
		}
	}
	wpm := s.TypingProfile.WPM
	if wpm == 0 && avgInterval > 0 {
		wpm = 60000 / avgInterval
	}
	return profile{
		AvgInterval:    round1(avgInterval),
		AvgPressLength: round1(avgPress),
		WPM:            round1(wpm),
		LongPauseRate:  round3(s.TypingProfile.LongPauseRate),
	}
}

// keyboardAge maps speed, dwell, and pause behavior onto a playful
// "years of experience" scale.
func keyboardAge(s *model.Summary) float64 {
	p := deriveProfile(s)
	interval := p.AvgInterval
	if interval == 0 {
		interval = 500
	}
	press := p.AvgPressLength
	if press == 0 {
		press = 200
	}
	score := (p.WPM/120)*3 + (500/math.Max(interval, 1))*1.5 + 200/math.Max(press, 1)
	return round1(math.Max(0.5, math.Min(12, score)))
}

type keyHold struct {
	Key   string
	AvgMs int64
	Count int64
}

// keyHolds returns the keys held longest on average.
func keyHolds(s *model.Summary, limit int) []keyHold {
	entries := make([]keyHold, 0, len(s.KeyPressLengths))
	for key, stat := range s.KeyPressLengths {
		if stat == nil || stat.Count == 0 {
			continue
		}
		entries = append(entries, keyHold{Key: key, AvgMs: int64(math.Round(stat.AvgMs())), Count: stat.Count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AvgMs != entries[j].AvgMs {
			return entries[i].AvgMs > entries[j].AvgMs
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func formatKeyHolds(holds []keyHold) string {
	if len(holds) == 0 {
		return "No dwell data yet."
	}
	parts := make([]string, 0, len(holds))
	for _, h := range holds {
		parts = append(parts, fmt.Sprintf("%s %dms over %d hits", strings.ToUpper(h.Key), h.AvgMs, h.Count))
	}
	return strings.Join(parts, ", ")
}

// wordShapeNotes summarizes per-letter hold averages for the top words.
func wordShapeNotes(s *model.Summary, limit int) []string {
	var notes []string
	for _, entry := range topWords(s, limit) {
		samples := s.WordShapes[entry.Word]
		if len(samples) == 0 {
			continue
		}
		length := len([]rune(entry.Word))
		if length == 0 {
			continue
		}
		totals := make([]int64, length)
		counts := make([]int64, length)
		for _, sample := range samples {
			for idx, duration := range sample.Durations {
				if idx >= length {
					break
				}
				totals[idx] += duration
				counts[idx]++
			}
		}
		var sum int64
		for idx := range totals {
			if counts[idx] > 0 {
				sum += totals[idx] / counts[idx]
			}
		}
		avgHold := int64(math.Round(float64(sum) / float64(length)))
		notes = append(notes, fmt.Sprintf("%s avg hold %dms across %d runs", entry.Word, avgHold, len(samples)))
	}
	return notes
}

type pairCount struct {
	Count    int64
	From, To string
}

func sortedPairs(pairs map[string]map[string]int64, limit int) []pairCount {
	var merged []pairCount
	for from, targets := range pairs {
		for to, count := range targets {
			merged = append(merged, pairCount{Count: count, From: from, To: to})
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Count != merged[j].Count {
			return merged[i].Count > merged[j].Count
		}
		if merged[i].From != merged[j].From {
			return merged[i].From < merged[j].From
		}
		return merged[i].To < merged[j].To
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func transitionNotes(s *model.Summary, limit int) []string {
	return describePairs(sortedPairs(s.WordPairs, limit))
}

func adjacencyNotes(s *model.Summary, limit int) []string {
	return describePairs(sortedPairs(s.KeyPairs, limit))
}

func describePairs(pairs []pairCount) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, fmt.Sprintf("%s->%s (%d)", p.From, p.To, p.Count))
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
