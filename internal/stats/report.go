package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/store"
)

// Report holds everything the plain renderer and the dashboard need.
type Report struct {
	Summary  *model.Summary
	Sessions []model.SessionRecord
	Totals   store.Totals
}

// ReportOptions filters and shapes a report.
type ReportOptions struct {
	Since  *time.Time
	Last   int
	Window int
}

// BuildReport loads the summary document and the archived sessions. A nil
// store yields a report without session data.
func BuildReport(ctx context.Context, summaryPath string, st *store.Store, opts ReportOptions) (Report, error) {
	r := Report{Summary: docstore.LoadSummary(summaryPath)}
	if st == nil {
		return r, nil
	}

	sessions, err := st.ListSessions(ctx, opts.Since, 0)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if opts.Last > 0 && len(sessions) > opts.Last {
		sessions = sessions[len(sessions)-opts.Last:]
	}
	totals, err := st.GetTotals(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load session totals: %w", err)
	}
	r.Sessions = sessions
	r.Totals = totals
	return r, nil
}

// RenderReport writes the plain-text stats report.
func RenderReport(w io.Writer, r Report, width int, useColor bool) error {
	s := r.Summary
	if s == nil || s.TotalEvents == 0 {
		_, err := fmt.Fprintln(w, "No keystrokes recorded yet.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Overview"); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Keystrokes: %d (%d letters, %d actions)", s.TotalEvents, s.Letters, s.Actions),
		fmt.Sprintf("Words: %d", s.Words),
		fmt.Sprintf("Speed: %g WPM at %gms intervals", s.TypingProfile.WPM, s.TypingProfile.AvgInterval),
		fmt.Sprintf("Accuracy score: %.1f (%d correct, %d off)", s.WordAccuracy.Score, s.WordAccuracy.Correct, s.WordAccuracy.Incorrect),
		fmt.Sprintf("Speed points: %d earned over %d sessions", s.SpeedPoints.Earned, s.SpeedPoints.Sessions),
		fmt.Sprintf("Rage bursts: %d, long pauses: %d", s.RageClicks, s.LongPauses),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if dates, values := DailyActivity(s, 30); len(dates) > 0 {
		if _, err := fmt.Fprintf(w, "\nDaily activity (%s to %s)\n%s\n",
			dates[0], dates[len(dates)-1], Sparkline(values)); err != nil {
			return err
		}
	}

	if err := renderTopWordsTable(w, s); err != nil {
		return err
	}
	if err := renderSessionsTable(w, r.Sessions); err != nil {
		return err
	}
	return RenderSessionCurves(w, r.Sessions, 5, width, useColor)
}

// RenderSessionCurves plots the WPM and accuracy curves over the archived
// sessions with a moving-average window.
func RenderSessionCurves(w io.Writer, sessions []model.SessionRecord, window, totalWidth int, useColor bool) error {
	if len(sessions) < 2 {
		return nil
	}
	wpms, accs := SessionSeries(sessions)
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	plotWidth := 0
	if totalWidth > 0 {
		plotWidth = PlotWidthFor(totalWidth)
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return PlotSeries(w, "Session curves", []Series{
		{Name: "WPM", Values: wpms},
		{Name: "Accuracy %", Values: accs},
	}, plotWidth, defaultPlotHeight, useColor)
}

func renderTopWordsTable(w io.Writer, s *model.Summary) error {
	words := TopWords(s, 10)
	if len(words) == 0 {
		return nil
	}
	rows := make([][]string, len(words))
	for i, word := range words {
		rows[i] = []string{word, fmt.Sprintf("%d", s.WordCounts[word])}
	}
	if _, err := fmt.Fprintln(w, "\nTop words"); err != nil {
		return err
	}
	for _, line := range formatTable([]string{"Word", "Count"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderSessionsTable(w io.Writer, sessions []model.SessionRecord) error {
	if len(sessions) == 0 {
		return nil
	}
	shown := sessions
	if len(shown) > 15 {
		shown = shown[len(shown)-15:]
	}
	rows := make([][]string, len(shown))
	for i, rec := range shown {
		wpm, acc := SessionMetrics(rec)
		earned := ""
		if rec.Earned {
			earned = "*"
		}
		rows[i] = []string{
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", rec.Keystrokes),
			fmt.Sprintf("%.0fms", rec.AvgIntervalMs),
			fmt.Sprintf("%.0f", wpm),
			fmt.Sprintf("%.0f%%", acc),
			earned,
		}
	}
	if _, err := fmt.Fprintf(w, "\nSpeed sessions (last %d)\n", len(shown)); err != nil {
		return err
	}
	headers := []string{"Started", "Keys", "Interval", "WPM", "Accuracy", "Earned"}
	aligns := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, aligns) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight("* session met the accuracy gate", " ")); err != nil {
		return err
	}
	return nil
}
