package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/store"
)

func reportSummary() *model.Summary {
	s := model.NewSummary()
	s.TotalEvents = 500
	s.Letters = 450
	s.Actions = 50
	s.Words = 90
	s.WordCounts = map[string]int64{"hello": 12, "world": 7}
	s.DailyActivity = map[string]int64{"2025-06-01": 200, "2025-06-02": 300}
	s.WordAccuracy = model.WordAccuracy{Score: 14.5, Correct: 80, Incorrect: 10}
	s.SpeedPoints = model.SpeedPoints{Earned: 3, Sessions: 5}
	s.TypingProfile = model.TypingProfile{WPM: 300, AvgInterval: 200}
	return s
}

func TestRenderReportSections(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	r := Report{
		Summary: reportSummary(),
		Sessions: []model.SessionRecord{
			{StartedAt: start, EndedAt: start.Add(time.Minute), Keystrokes: 40, AvgIntervalMs: 150, AccuracyPct: 100, Earned: true},
			{StartedAt: start.Add(time.Hour), EndedAt: start.Add(time.Hour + time.Minute), Keystrokes: 25, AvgIntervalMs: 250, AccuracyPct: 50},
		},
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, r, 80, false); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Keystrokes: 500 (450 letters, 50 actions)",
		"Speed: 300 WPM at 200ms intervals",
		"Speed points: 3 earned over 5 sessions",
		"Daily activity (2025-06-01 to 2025-06-02)",
		"Top words",
		"hello",
		"Speed sessions (last 2)",
		"Session curves",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportEmptySummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, Report{Summary: model.NewSummary()}, 80, false); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No keystrokes recorded yet.") {
		t.Fatalf("expected empty-state message, got %q", buf.String())
	}
}

func TestBuildReportLoadsSessions(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "summary.json")
	if err := docstore.SaveSummary(summaryPath, reportSummary()); err != nil {
		t.Fatalf("failed to seed summary: %v", err)
	}

	st, err := store.Open(filepath.Join(dir, "sessions.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := model.SessionRecord{
			ID:            string(rune('a' + i)),
			StartedAt:     start.Add(time.Duration(i) * time.Hour),
			EndedAt:       start.Add(time.Duration(i)*time.Hour + time.Minute),
			Keystrokes:    10,
			AvgIntervalMs: 150,
			AccuracyPct:   100,
			Earned:        true,
		}
		if err := st.InsertSession(context.Background(), rec); err != nil {
			t.Fatalf("failed to insert session: %v", err)
		}
	}

	r, err := BuildReport(context.Background(), summaryPath, st, ReportOptions{Last: 2})
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if r.Summary.TotalEvents != 500 {
		t.Fatalf("summary not loaded: %+v", r.Summary)
	}
	if len(r.Sessions) != 2 {
		t.Fatalf("expected last 2 sessions, got %d", len(r.Sessions))
	}
	if r.Sessions[0].StartedAt.Hour() != 11 {
		t.Fatalf("expected trailing window, got %+v", r.Sessions[0])
	}
	if r.Totals.Sessions != 3 || r.Totals.Earned != 3 {
		t.Fatalf("unexpected totals: %+v", r.Totals)
	}
}

func TestPlotSeriesRendersRows(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Curve", []Series{
		{Name: "WPM", Values: []float64{100, 200, 300, 250}},
	}, 20, 5, false)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Title, min/max line, 5 plot rows, legend.
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Curve" {
		t.Fatalf("expected title first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "min=100.00 max=300.00") {
		t.Fatalf("expected bounds line, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "max │ ") {
		t.Fatalf("expected axis gutter, got %q", lines[2])
	}
	if !strings.Contains(lines[7], "Legend: ") {
		t.Fatalf("expected legend, got %q", lines[7])
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-6 {
		t.Fatalf("expected 74, got %d", got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected floor %d, got %d", minPlotWidth, got)
	}
}
