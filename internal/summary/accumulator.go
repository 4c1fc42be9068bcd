// Package summary implements the streaming keystroke statistics accumulator.
package summary

import (
	"fmt"
	"math"
	"time"
	"unicode"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/trace"
	"github.com/keywrapped/keywrapped/internal/wordcheck"
)

const (
	defaultRageIntervalMs = 450
	rageStreakMin         = 4
	longPauseMs           = 2000
)

// Keystroke identifies one normalized key. Char keys carry the literal
// character as Name; named keys carry a lowercase identifier such as
// "space" or "shift".
type Keystroke struct {
	Name string
	Char bool
}

var wordDelimiters = map[string]struct{}{
	"space": {},
	"enter": {},
	"tab":   {},
}

// Options configures an Accumulator.
type Options struct {
	// SummaryPath is where the summary document is persisted. Empty
	// disables persistence entirely.
	SummaryPath string
	// PersistEachEvent saves the summary after every finalized event,
	// as the live logger requires. Batch injectors leave this off and
	// rely on the final save in Stop.
	PersistEachEvent bool
	// EventLog optionally receives every finalized event as JSONL.
	EventLog *EventLog
	// Checker judges completed words. When nil a checker is built from
	// the accuracy settings with lexicon-only matching.
	Checker  *wordcheck.Checker
	Accuracy config.AccuracySettings
	Speed    config.SpeedSettings
	// Sessions optionally archives committed speed sessions.
	Sessions SessionSink
	Trace    *trace.Log
	// RageIntervalMs overrides the repeat-press interval ceiling for
	// rage detection. Zero means the default.
	RageIntervalMs int64
	Now            func() time.Time
}

// Accumulator owns the summary document and folds key events into it. It is
// single-writer: one accumulator per summary document, no internal locking.
type Accumulator struct {
	summary *model.Summary

	summaryPath    string
	persistEach    bool
	eventLog       *EventLog
	checker        *wordcheck.Checker
	accuracy       config.AccuracySettings
	trace          *trace.Log
	rageIntervalMs int64
	now            func() time.Time

	words wordTracker
	speed *speedTracker

	pending       map[string]pendingKey
	lastPressTime *time.Time
	lastKey       string
	lastLoggedKey string
	rageStreak    int
	currentDay    string
}

type pendingKey struct {
	event     model.KeyEvent
	pressedAt time.Time
}

// New wraps an accumulator around an existing summary document.
func New(s *model.Summary, opts Options) *Accumulator {
	s.EnsureDefaults()
	s.SpeedPoints.TargetSessions = opts.Speed.TargetSessions

	checker := opts.Checker
	if checker == nil {
		checker = wordcheck.New(wordcheck.Options{
			Threshold:  opts.Accuracy.Threshold,
			MinLength:  opts.Accuracy.MinWordLength,
			Languages:  opts.Accuracy.Languages,
			ExtraWords: opts.Accuracy.ExtraWords,
		})
	}
	rage := opts.RageIntervalMs
	if rage <= 0 {
		rage = defaultRageIntervalMs
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Accumulator{
		summary:        s,
		summaryPath:    opts.SummaryPath,
		persistEach:    opts.PersistEachEvent,
		eventLog:       opts.EventLog,
		checker:        checker,
		accuracy:       opts.Accuracy,
		trace:          opts.Trace,
		rageIntervalMs: rage,
		now:            now,
		speed:          newSpeedTracker(opts.Speed, opts.Trace, opts.Sessions),
		pending:        map[string]pendingKey{},
	}
}

// Summary exposes the owned document for read-only consumers.
func (a *Accumulator) Summary() *model.Summary {
	return a.summary
}

// Press registers a key press at the given time. Rage and long-pause
// detection and word segmentation happen here; the event itself is not
// finalized until the matching release.
func (a *Accumulator) Press(key Keystroke, at time.Time) {
	var interval int64
	if a.lastPressTime != nil {
		interval = at.Sub(*a.lastPressTime).Milliseconds()
	}
	dateLabel := at.UTC().Format("2006-01-02")

	category := model.CategoryAction
	if key.Char {
		category = model.CategoryLetter
	}

	var behaviors model.Behaviors
	if a.lastKey == key.Name && interval > 0 && interval < a.rageIntervalMs {
		a.rageStreak++
	} else {
		a.rageStreak = 1
	}
	if a.rageStreak >= rageStreakMin {
		behaviors.RageClick = true
	}

	if interval > longPauseMs {
		behaviors.LongPause = true
		// The pause invalidates the in-progress word: flush it unscored
		// and sever the word chain.
		a.finishWord(dateLabel, true, false)
	}

	if key.Char && isAlphabetic(key.Name) {
		a.words.bufferLetter(key.Name, at)
	} else if !key.Char {
		if _, ok := wordDelimiters[key.Name]; ok {
			a.finishWord(dateLabel, false, true)
		}
	}

	a.pending[key.Name] = pendingKey{
		event: model.KeyEvent{
			Timestamp:  at,
			Key:        key.Name,
			Category:   category,
			IntervalMs: interval,
			Behaviors:  behaviors,
		},
		pressedAt: at,
	}
	t := at
	a.lastPressTime = &t
	a.lastKey = key.Name
}

// Release finalizes the pending press for key. Releases with no matching
// press are dropped.
func (a *Accumulator) Release(key Keystroke, at time.Time) {
	rec, ok := a.pending[key.Name]
	if !ok {
		return
	}
	delete(a.pending, key.Name)

	duration := at.Sub(rec.pressedAt).Milliseconds()
	rec.event.DurationMs = &duration
	if rec.event.Category == model.CategoryLetter {
		a.words.addTiming(duration, rec.event.IntervalMs)
	}

	if err := a.eventLog.Append(rec.event); err != nil {
		a.trace.Appendf("Failed to append event log entry: %v", err)
	}
	a.record(rec.event)
}

// record folds one finalized event into the summary and recomputes the
// typing profile.
func (a *Accumulator) record(ev model.KeyEvent) {
	s := a.summary
	s.TotalEvents++
	s.KeyCounts[ev.Key]++

	// The adjacency chain tracks raw physical rhythm and deliberately
	// advances across long pauses, unlike the word chain.
	if a.lastLoggedKey != "" {
		pairs := s.KeyPairs[a.lastLoggedKey]
		if pairs == nil {
			pairs = map[string]int64{}
			s.KeyPairs[a.lastLoggedKey] = pairs
		}
		pairs[ev.Key]++
	}
	a.lastLoggedKey = ev.Key

	if ev.IntervalMs > 0 {
		s.IntervalStats.Observe(ev.IntervalMs)
	}
	if ev.DurationMs != nil {
		stat := s.KeyPressLengths[ev.Key]
		if stat == nil {
			stat = &model.RunningStat{}
			s.KeyPressLengths[ev.Key] = stat
		}
		stat.Observe(*ev.DurationMs)
	}

	if ev.Category == model.CategoryLetter {
		s.Letters++
	} else {
		s.Actions++
	}

	label := ev.DateLabel()
	if ev.Behaviors.RageClick {
		s.RageClicks++
		s.DailyRage[label]++
	}
	if ev.Behaviors.LongPause {
		s.LongPauses++
	}
	s.DailyActivity[label]++
	a.currentDay = label

	stamp := ev.Timestamp.UTC().Format(time.RFC3339Nano)
	s.LastEvent = &stamp
	if s.FirstEvent == nil {
		s.FirstEvent = &stamp
	}

	a.speed.observe(&s.SpeedPoints, ev.Timestamp, ev.IntervalMs)
	a.refreshProfile()

	if a.persistEach && a.summaryPath != "" {
		a.persist()
	}
}

// finishWord flushes the buffered word into the word-level statistics.
// scoreWord is false for words cut off by a pause or shutdown, which are
// counted but never judged.
func (a *Accumulator) finishWord(dayLabel string, resetSequence, scoreWord bool) {
	s := a.summary
	label := dayLabel
	if label == "" {
		label = a.currentDay
	}
	if label == "" && s.LastEvent != nil && len(*s.LastEvent) >= 10 {
		label = (*s.LastEvent)[:10]
	}

	word, start, last, timings := a.words.take()
	if word != "" {
		s.Words++
		s.WordCounts[word]++

		if a.words.previous != "" {
			pairs := s.WordPairs[a.words.previous]
			if pairs == nil {
				pairs = map[string]int64{}
				s.WordPairs[a.words.previous] = pairs
			}
			pairs[word]++
		}
		a.words.previous = word

		if label != "" {
			day := s.DailyWordCounts[label]
			if day == nil {
				day = map[string]int64{}
				s.DailyWordCounts[label] = day
			}
			day[word]++
		}

		if scoreWord {
			a.scoreWord(word)
		}

		if duration, ok := wordDurationMs(start, last); ok {
			stat := s.WordDurations[word]
			if stat == nil {
				stat = &model.WordDurationStat{}
				s.WordDurations[word] = stat
			}
			stat.Observe(duration)
			if len(timings) > 0 {
				s.WordShapes[word] = append(s.WordShapes[word], shapeSample(timings))
			}
		}
	}

	if resetSequence {
		a.words.previous = ""
	}
}

// scoreWord adjusts the bounded accuracy score for one completed word.
// Words below the minimum length are ignored entirely.
func (a *Accumulator) scoreWord(word string) {
	if !a.checker.Eligible(word) {
		return
	}
	s := a.summary
	correct := a.checker.IsPlausible(word)
	points := a.accuracy.IncorrectPoints
	if correct {
		points = a.accuracy.CorrectPoints
		s.WordAccuracy.Correct++
	} else {
		s.WordAccuracy.Incorrect++
	}

	score := s.WordAccuracy.Score + points
	score = math.Max(0, math.Min(score, a.accuracy.TargetScore))
	s.WordAccuracy.Score = score
	a.trace.Appendf("Word '%s' earned %+.1f accuracy point(s).", word, points)
	a.speed.observeWord(correct)
}

// refreshProfile recomputes the derived typing profile from the raw
// accumulators. The profile is never independently mutated.
func (a *Accumulator) refreshProfile() {
	s := a.summary

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

	wpm := 0.0
	if avgInterval > 0 {
		wpm = 60000 / avgInterval
	}

	var shapeCount int64
	for _, samples := range s.WordShapes {
		shapeCount += int64(len(samples))
	}

	pauseRate := 0.0
	if s.TotalEvents > 0 {
		pauseRate = float64(s.LongPauses) / float64(s.TotalEvents)
	}

	s.TypingProfile = model.TypingProfile{
		AvgInterval:      round1(avgInterval),
		AvgPressLength:   round1(avgPress),
		WPM:              round1(wpm),
		WordShapeSamples: shapeCount,
		LongPauseRate:    round3(pauseRate),
	}
}

// Stop flushes pending presses, finalizes the in-progress word without
// scoring, commits any open speed session, and performs a final durable
// save.
func (a *Accumulator) Stop() error {
	at := a.now()
	names := make([]string, 0, len(a.pending))
	for name := range a.pending {
		names = append(names, name)
	}
	for _, name := range names {
		rec := a.pending[name]
		a.Release(Keystroke{Name: name, Char: rec.event.Category == model.CategoryLetter}, at)
	}

	a.finishWord(a.currentDay, false, false)
	a.speed.flush(&a.summary.SpeedPoints)
	a.refreshProfile()

	var firstErr error
	if err := a.eventLog.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close event log: %w", err)
	}
	if a.summaryPath != "" {
		if err := docstore.SaveSummary(a.summaryPath, a.summary); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *Accumulator) persist() {
	if err := docstore.SaveSummary(a.summaryPath, a.summary); err != nil {
		a.trace.Appendf("Failed to persist summary: %v", err)
		return
	}
	a.trace.Appendf("Summary saved: %d events, %gms avg interval", a.summary.TotalEvents, a.summary.TypingProfile.AvgInterval)
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
