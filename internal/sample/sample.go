// Package sample builds a synthetic year of typing data for the sample
// display mode.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/keywrapped/keywrapped/internal/model"
)

const defaultSeed = 490

var sampleWords = []string{
	"pulse", "glimmer", "code", "verse", "flux", "orbit", "drift", "spark",
	"tone", "loom", "craft", "night", "frame", "echo", "shift",
}

var sampleActions = []string{"space", "enter", "tab", "shift", "backspace"}

const letterKeys = "abcdefghijklmnopqrstuvwxyz"

// Generator produces deterministic synthetic summaries.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator with the fixed sample seed.
func New() *Generator {
	return NewSeeded(defaultSeed)
}

// NewSeeded returns a Generator with an explicit seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate synthesizes one year of summary data starting January 1st of the
// given year. The same seed always yields the same document.
func (g *Generator) Generate(year int) *model.Summary {
	s := model.NewSummary()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	const days = 365

	wordCounts := map[string]int64{}
	for offset := 0; offset < days; offset++ {
		current := start.AddDate(0, 0, offset)
		label := current.Format("2006-01-02")
		wave := math.Sin(float64(offset) / 30)
		activity := int64(1200+500*wave) + int64(g.intn(-250, 250))
		if activity < 420 {
			activity = 420
		}
		s.DailyActivity[label] = activity

		rage := int64(g.rnd.Intn(27))
		switch current.Weekday() {
		case time.Friday, time.Saturday:
			rage += int64(g.rnd.Intn(19))
		}
		if current.Day() == 1 {
			rage += 10
		}
		s.DailyRage[label] = rage

		dayWords := map[string]int64{}
		for _, word := range g.pick(sampleWords, 4) {
			count := int64(g.intn(60, 220))
			if isSeasonWord(word) && isSeasonMonth(current.Month()) {
				count += 30
			}
			dayWords[word] = count
			wordCounts[word] += count
		}
		s.DailyWordCounts[label] = dayWords
	}
	s.WordCounts = wordCounts

	for _, r := range letterKeys {
		s.KeyCounts[string(r)] = int64(g.intn(6500, 21000))
	}
	for _, action := range sampleActions {
		s.KeyCounts[action] = int64(g.intn(2400, 8400))
	}

	for _, word := range sampleWords {
		pairs := map[string]int64{}
		for _, target := range g.pickOther(sampleWords, word, 4) {
			pairs[target] = int64(g.intn(120, 460))
		}
		s.WordPairs[word] = pairs
	}

	allKeys := make([]string, 0, len(letterKeys)+len(sampleActions))
	for _, r := range letterKeys {
		allKeys = append(allKeys, string(r))
	}
	allKeys = append(allKeys, sampleActions...)
	for _, key := range allKeys {
		pairs := map[string]int64{}
		for _, neighbor := range g.pickOther(allKeys, key, 5) {
			pairs[neighbor] = int64(g.intn(45, 200))
		}
		s.KeyPairs[key] = pairs
	}

	for _, word := range sampleWords {
		total := wordCounts[word]
		avg := int64(g.intn(310, 570))
		fastest := int64(g.intn(160, 260))
		s.WordDurations[word] = &model.WordDurationStat{
			Count:     total,
			TotalMs:   total * avg,
			FastestMs: &fastest,
			SlowestMs: int64(g.intn(520, 1020)),
		}
	}

	for _, key := range allKeys {
		count := int64(g.intn(220, 520))
		avg := g.intn(150, 260)
		low := avg - 120
		if low < 30 {
			low = 30
		}
		minVal := int64(g.intn(low, avg))
		s.KeyPressLengths[key] = &model.RunningStat{
			Count:   count,
			TotalMs: count * int64(avg),
			MaxMs:   int64(g.intn(avg+60, avg+220)),
			MinMs:   &minVal,
		}
	}

	minInterval := int64(32)
	s.IntervalStats = model.RunningStat{
		Count:   125000,
		TotalMs: 125000 * 430,
		MaxMs:   2800,
		MinMs:   &minInterval,
	}

	var shapeSamples int64
	for _, word := range sampleWords {
		samples := make([]model.WordShapeSample, g.intn(4, 7))
		for i := range samples {
			durations := make([]int64, len(word))
			intervals := make([]int64, len(word))
			for j := range word {
				durations[j] = int64(g.intn(180, 430))
				intervals[j] = int64(g.intn(90, 330))
			}
			samples[i] = model.WordShapeSample{Durations: durations, Intervals: intervals}
		}
		s.WordShapes[word] = samples
		shapeSamples += int64(len(samples))
	}

	for _, key := range allKeys {
		s.TotalEvents += s.KeyCounts[key]
	}
	for _, r := range letterKeys {
		s.Letters += s.KeyCounts[string(r)]
	}
	s.Actions = s.TotalEvents - s.Letters
	for _, count := range wordCounts {
		s.Words += count
	}
	for _, count := range s.DailyRage {
		s.RageClicks += count
	}
	s.LongPauses = int64(g.intn(620, 940))

	first := start.Add(6*time.Hour + 30*time.Minute).Format(time.RFC3339Nano)
	last := start.AddDate(1, 0, -1).Add(23*time.Hour + 58*time.Minute).Format(time.RFC3339Nano)
	s.FirstEvent = &first
	s.LastEvent = &last

	avgInterval := s.IntervalStats.AvgMs()
	var pressTotal, pressCount int64
	for _, stat := range s.KeyPressLengths {
		pressTotal += stat.TotalMs
		pressCount += stat.Count
	}
	avgPress := 0.0
	if pressCount > 0 {
		avgPress = float64(pressTotal) / float64(pressCount)
	}
	s.TypingProfile = model.TypingProfile{
		AvgInterval:      math.Round(avgInterval*10) / 10,
		AvgPressLength:   math.Round(avgPress*10) / 10,
		WPM:              math.Round(60000/avgInterval*10) / 10,
		WordShapeSamples: shapeSamples,
		LongPauseRate:    math.Round((0.005+g.rnd.Float64()*0.013)*1000) / 1000,
	}
	return s
}

// intn returns a uniform value in [low, high].
func (g *Generator) intn(low, high int) int {
	if high <= low {
		return low
	}
	return low + g.rnd.Intn(high-low+1)
}

// pick selects n distinct entries, preserving deterministic order from the
// seeded shuffle.
func (g *Generator) pick(pool []string, n int) []string {
	idx := g.rnd.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pool[idx[i]]
	}
	return out
}

func (g *Generator) pickOther(pool []string, exclude string, n int) []string {
	filtered := make([]string, 0, len(pool))
	for _, entry := range pool {
		if entry != exclude {
			filtered = append(filtered, entry)
		}
	}
	return g.pick(filtered, n)
}

func isSeasonWord(word string) bool {
	switch word {
	case "code", "pulse", "craft":
		return true
	}
	return false
}

func isSeasonMonth(m time.Month) bool {
	switch m {
	case time.March, time.June, time.September:
		return true
	}
	return false
}

// Describe returns a short line about the generated document for stderr.
func Describe(s *model.Summary) string {
	return fmt.Sprintf("sample summary: %d events over %d days, %d words",
		s.TotalEvents, len(s.DailyActivity), s.Words)
}
