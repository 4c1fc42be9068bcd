package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/trace"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAccumulator(opts Options) *Accumulator {
	if opts.Accuracy.TargetScore == 0 {
		opts.Accuracy = config.FileConfig{}.ResolveAccuracy()
	}
	if opts.Speed.BaselineIntervalMs == 0 {
		opts.Speed = config.FileConfig{}.ResolveSpeed()
	}
	return New(model.NewSummary(), opts)
}

// typer drives press/release pairs with scripted timings.
type typer struct {
	acc *Accumulator
	at  time.Time
}

// key advances the clock by gap, presses the key, and releases it 30ms
// later.
func (ty *typer) key(name string, char bool, gap time.Duration) {
	ty.at = ty.at.Add(gap)
	k := Keystroke{Name: name, Char: char}
	ty.acc.Press(k, ty.at)
	ty.acc.Release(k, ty.at.Add(30*time.Millisecond))
}

// word types each letter of w with the given gap, then a space.
func (ty *typer) word(w string, gap time.Duration) {
	for _, r := range w {
		ty.key(string(r), true, gap)
	}
	ty.key("space", false, gap)
}

func TestRageDetectionThreshold(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}
	for i := 0; i < 4; i++ {
		ty.key("a", true, 100*time.Millisecond)
	}
	if got := acc.Summary().RageClicks; got != 1 {
		t.Fatalf("expected 1 rage click after 4 fast presses, got %d", got)
	}

	// The flag keeps firing while the streak holds.
	ty.key("a", true, 100*time.Millisecond)
	ty.key("a", true, 100*time.Millisecond)
	if got := acc.Summary().RageClicks; got != 3 {
		t.Fatalf("expected 3 rage clicks after 6 fast presses, got %d", got)
	}

	slow := newTestAccumulator(Options{})
	ty = &typer{acc: slow, at: testBase}
	for i := 0; i < 6; i++ {
		ty.key("a", true, 500*time.Millisecond)
	}
	if got := slow.Summary().RageClicks; got != 0 {
		t.Fatalf("expected no rage clicks with 500ms gaps, got %d", got)
	}
}

func TestLongPauseFlushesWordAndResetsChain(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}

	for _, r := range "cat" {
		ty.key(string(r), true, 100*time.Millisecond)
	}
	// The pause flushes "cat" unscored and severs the word chain.
	ty.key("d", true, 3*time.Second)
	ty.key("o", true, 100*time.Millisecond)
	ty.key("g", true, 100*time.Millisecond)
	ty.key("space", false, 100*time.Millisecond)

	s := acc.Summary()
	if s.WordCounts["cat"] != 1 || s.WordCounts["dog"] != 1 {
		t.Fatalf("expected cat and dog counted once, got %v", s.WordCounts)
	}
	if _, ok := s.WordPairs["cat"]; ok {
		t.Fatalf("expected no word pair across the long pause, got %v", s.WordPairs)
	}
	if s.LongPauses != 1 {
		t.Fatalf("expected 1 long pause, got %d", s.LongPauses)
	}
	// The flushed word is never scored.
	if s.WordAccuracy.Correct+s.WordAccuracy.Incorrect != 1 {
		t.Fatalf("expected only dog to be scored, got %+v", s.WordAccuracy)
	}
	// The key adjacency chain survives the pause.
	if s.KeyPairs["t"]["d"] != 1 {
		t.Fatalf("expected adjacency t->d across the pause, got %v", s.KeyPairs)
	}
}

func TestWordChainWithoutPause(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}
	ty.word("cat", 100*time.Millisecond)
	ty.word("dog", 100*time.Millisecond)

	s := acc.Summary()
	if s.WordPairs["cat"]["dog"] != 1 {
		t.Fatalf("expected word pair cat->dog, got %v", s.WordPairs)
	}
	if s.Words != 2 {
		t.Fatalf("expected 2 words, got %d", s.Words)
	}
}

func TestSegmentationIsDelimiterDriven(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "debug.log")
	acc := newTestAccumulator(Options{Trace: trace.New(tracePath)})
	ty := &typer{acc: acc, at: testBase}
	ty.word("hey", 100*time.Millisecond)
	ty.word("there", 100*time.Millisecond)

	s := acc.Summary()
	if s.WordCounts["hey"] != 1 || s.WordCounts["there"] != 1 {
		t.Fatalf("unexpected word counts: %v", s.WordCounts)
	}
	if s.WordPairs["hey"]["there"] != 1 {
		t.Fatalf("expected word pair hey->there, got %v", s.WordPairs)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("failed to read trace: %v", err)
	}
	lines := string(data)
	if !strings.Contains(lines, "Word 'hey'") || !strings.Contains(lines, "Word 'there'") {
		t.Fatalf("expected scoring lines for both words, got:\n%s", lines)
	}
	if strings.Contains(lines, "heythere") {
		t.Fatalf("words must not concatenate across the delimiter:\n%s", lines)
	}
}

func TestAccuracyScoreStaysClamped(t *testing.T) {
	acc := newTestAccumulator(Options{Accuracy: config.AccuracySettings{
		Threshold:       2.5,
		MinWordLength:   1,
		CorrectPoints:   1,
		IncorrectPoints: -2,
		TargetScore:     3,
		ExtraWords:      []string{"cat"},
		Languages:       []string{"en"},
	}})
	ty := &typer{acc: acc, at: testBase}

	// Implausible words never push the score below zero.
	for i := 0; i < 5; i++ {
		ty.word("zzxq", 100*time.Millisecond)
	}
	s := acc.Summary()
	if s.WordAccuracy.Score != 0 {
		t.Fatalf("expected score clamped at 0, got %v", s.WordAccuracy.Score)
	}
	if s.WordAccuracy.Incorrect != 5 {
		t.Fatalf("expected 5 incorrect words, got %d", s.WordAccuracy.Incorrect)
	}

	// Plausible words cap at the target.
	for i := 0; i < 6; i++ {
		ty.word("cat", 100*time.Millisecond)
	}
	if s.WordAccuracy.Score != 3 {
		t.Fatalf("expected score clamped at target 3, got %v", s.WordAccuracy.Score)
	}
}

func TestShortWordsAreIgnored(t *testing.T) {
	acc := newTestAccumulator(Options{Accuracy: config.AccuracySettings{
		Threshold:       2.5,
		MinWordLength:   3,
		CorrectPoints:   1,
		IncorrectPoints: -2,
		TargetScore:     120,
		Languages:       []string{"en"},
	}})
	ty := &typer{acc: acc, at: testBase}
	ty.word("ab", 100*time.Millisecond)

	s := acc.Summary()
	if s.WordAccuracy.Correct != 0 || s.WordAccuracy.Incorrect != 0 {
		t.Fatalf("expected short word to leave accuracy untouched, got %+v", s.WordAccuracy)
	}
	if s.WordCounts["ab"] != 1 {
		t.Fatalf("expected short word still counted, got %v", s.WordCounts)
	}
}

func TestTypingProfilePurity(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}
	ty.word("there", 120*time.Millisecond)

	first := acc.Summary().TypingProfile
	acc.refreshProfile()
	second := acc.Summary().TypingProfile
	if first != second {
		t.Fatalf("profile changed without new events: %+v vs %+v", first, second)
	}
	if first.AvgInterval == 0 || first.WPM == 0 {
		t.Fatalf("expected non-zero profile after typing, got %+v", first)
	}
}

func TestProfileValues(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}
	ty.key("a", true, 0)
	ty.key("b", true, 100*time.Millisecond)
	ty.key("c", true, 200*time.Millisecond)

	p := acc.Summary().TypingProfile
	if p.AvgInterval != 150 {
		t.Fatalf("expected avg interval 150, got %v", p.AvgInterval)
	}
	if p.AvgPressLength != 30 {
		t.Fatalf("expected avg press length 30, got %v", p.AvgPressLength)
	}
	if p.WPM != 400 {
		t.Fatalf("expected wpm 400, got %v", p.WPM)
	}
}

func TestStopFlushesPendingAndSaves(t *testing.T) {
	summaryPath := filepath.Join(t.TempDir(), "summary.json")
	now := testBase.Add(10 * time.Second)
	acc := newTestAccumulator(Options{
		SummaryPath: summaryPath,
		Now:         func() time.Time { return now },
	})
	ty := &typer{acc: acc, at: testBase}
	ty.key("h", true, 0)
	ty.key("i", true, 100*time.Millisecond)
	// A press with no release yet.
	acc.Press(Keystroke{Name: "x", Char: true}, ty.at.Add(100*time.Millisecond))

	if err := acc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	s := acc.Summary()
	if s.TotalEvents != 3 {
		t.Fatalf("expected pending key flushed, got %d events", s.TotalEvents)
	}
	// The trailing word is finalized but never scored.
	if s.WordCounts["hix"] != 1 {
		t.Fatalf("expected trailing word counted, got %v", s.WordCounts)
	}
	if s.WordAccuracy.Correct+s.WordAccuracy.Incorrect != 0 {
		t.Fatalf("expected no scoring on shutdown flush, got %+v", s.WordAccuracy)
	}

	loaded := docstore.LoadSummary(summaryPath)
	if loaded.TotalEvents != 3 {
		t.Fatalf("expected saved summary with 3 events, got %d", loaded.TotalEvents)
	}
}

func TestDailyBucketsAndFirstLast(t *testing.T) {
	acc := newTestAccumulator(Options{})
	ty := &typer{acc: acc, at: testBase}
	ty.key("a", true, 0)
	ty.key("b", true, 100*time.Millisecond)

	s := acc.Summary()
	day := testBase.Format("2006-01-02")
	if s.DailyActivity[day] != 2 {
		t.Fatalf("expected 2 events on %s, got %v", day, s.DailyActivity)
	}
	if s.FirstEvent == nil || s.LastEvent == nil {
		t.Fatalf("expected first/last event timestamps")
	}
	if *s.FirstEvent == *s.LastEvent {
		t.Fatalf("expected distinct first and last timestamps")
	}
	if s.Letters != 2 || s.Actions != 0 {
		t.Fatalf("expected 2 letters, got letters=%d actions=%d", s.Letters, s.Actions)
	}
}

func TestEventLogAppendsJSONL(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "keystrokes.jsonl")
	eventLog, err := OpenEventLog(logPath)
	if err != nil {
		t.Fatalf("OpenEventLog failed: %v", err)
	}
	acc := newTestAccumulator(Options{EventLog: eventLog})
	ty := &typer{acc: acc, at: testBase}
	ty.key("a", true, 0)
	ty.key("space", false, 100*time.Millisecond)
	if err := eventLog.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read event log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 event lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"key":"a"`) || !strings.Contains(lines[0], `"category":"letter"`) {
		t.Fatalf("unexpected first event line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"category":"action"`) {
		t.Fatalf("unexpected second event line: %s", lines[1])
	}
}

func TestReleaseWithoutPressIsDropped(t *testing.T) {
	acc := newTestAccumulator(Options{})
	acc.Release(Keystroke{Name: "a", Char: true}, testBase)
	if acc.Summary().TotalEvents != 0 {
		t.Fatalf("expected orphan release to be dropped")
	}
}
