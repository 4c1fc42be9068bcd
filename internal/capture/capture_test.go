package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keywrapped/keywrapped/internal/summary"
)

type recordedTransition struct {
	kind string
	key  summary.Keystroke
	at   time.Time
}

type sinkRecorder struct {
	transitions []recordedTransition
}

func (r *sinkRecorder) Press(key summary.Keystroke, at time.Time) {
	r.transitions = append(r.transitions, recordedTransition{"press", key, at})
}

func (r *sinkRecorder) Release(key summary.Keystroke, at time.Time) {
	r.transitions = append(r.transitions, recordedTransition{"release", key, at})
}

func TestParseSequenceMapsDelimiters(t *testing.T) {
	keys := ParseSequence("hi m\tx\n")
	want := []summary.Keystroke{
		{Name: "h", Char: true},
		{Name: "i", Char: true},
		{Name: "space"},
		{Name: "m", Char: true},
		{Name: "tab"},
		{Name: "x", Char: true},
		{Name: "enter"},
	}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d: expected %+v, got %+v", i, want[i], keys[i])
		}
	}
}

func TestScriptPlayCadence(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	script := Script{Keys: ParseSequence("ab"), IntervalMs: 120, DurationMs: 60}

	var rec sinkRecorder
	if n := script.Play(&rec, start); n != 4 {
		t.Fatalf("expected 4 transitions, got %d", n)
	}

	if rec.transitions[0].kind != "press" || !rec.transitions[0].at.Equal(start) {
		t.Fatalf("unexpected first transition: %+v", rec.transitions[0])
	}
	if got := rec.transitions[1].at.Sub(rec.transitions[0].at); got != 60*time.Millisecond {
		t.Fatalf("expected 60ms hold, got %v", got)
	}
	if got := rec.transitions[2].at.Sub(rec.transitions[0].at); got != 120*time.Millisecond {
		t.Fatalf("expected 120ms cadence, got %v", got)
	}
	if rec.transitions[2].key.Name != "b" {
		t.Fatalf("expected second key b, got %+v", rec.transitions[2].key)
	}
}

func TestScriptPlayDefaultsCadence(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	script := Script{Keys: ParseSequence("ab")}

	var rec sinkRecorder
	script.Play(&rec, start)
	if got := rec.transitions[2].at.Sub(rec.transitions[0].at); got != 120*time.Millisecond {
		t.Fatalf("expected default 120ms cadence, got %v", got)
	}
}

func TestStreamRunForwardsTransitions(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"press","key":"a","char":true,"timestamp":"2025-06-01T09:00:00Z"}`,
		`{"type":"release","key":"a","char":true,"timestamp":"2025-06-01T09:00:00.05Z"}`,
		``,
		`not json`,
		`{"type":"hover","key":"a"}`,
		`{"type":"press","key":"space"}`,
	}, "\n")

	now := time.Date(2025, 6, 1, 9, 0, 1, 0, time.UTC)
	stream := &Stream{
		Reader: strings.NewReader(input),
		Now:    func() time.Time { return now },
	}

	var rec sinkRecorder
	if err := stream.Run(context.Background(), &rec); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(rec.transitions) != 3 {
		t.Fatalf("expected 3 transitions, got %d: %v", len(rec.transitions), rec.transitions)
	}
	if rec.transitions[0].kind != "press" || rec.transitions[0].key.Name != "a" || !rec.transitions[0].key.Char {
		t.Fatalf("unexpected first transition: %+v", rec.transitions[0])
	}
	if got := rec.transitions[1].at.Sub(rec.transitions[0].at); got != 50*time.Millisecond {
		t.Fatalf("expected 50ms between press and release, got %v", got)
	}
	// No timestamp on the wire means the wall clock.
	if !rec.transitions[2].at.Equal(now) || rec.transitions[2].key.Name != "space" {
		t.Fatalf("unexpected clocked transition: %+v", rec.transitions[2])
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("adapter gone")
}

func TestStreamRunSurfacesReadErrors(t *testing.T) {
	stream := &Stream{Reader: failingReader{}}
	var rec sinkRecorder
	err := stream.Run(context.Background(), &rec)
	if err == nil || !strings.Contains(err.Error(), "adapter gone") {
		t.Fatalf("expected adapter failure, got %v", err)
	}
}

func TestStreamRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &Stream{Reader: strings.NewReader(`{"type":"press","key":"a","char":true}` + "\n")}
	var rec sinkRecorder
	if err := stream.Run(ctx, &rec); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rec.transitions) != 0 {
		t.Fatalf("expected no transitions after cancellation, got %v", rec.transitions)
	}
}
