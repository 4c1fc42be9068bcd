package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/keywrapped/keywrapped/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func testRecord(endedAt time.Time, earned bool) model.SessionRecord {
	return model.SessionRecord{
		ID:            uuid.NewString(),
		StartedAt:     endedAt.Add(-5 * time.Second),
		EndedAt:       endedAt,
		Keystrokes:    20,
		AvgIntervalMs: 150,
		AccuracyPct:   90,
		Earned:        earned,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := testRecord(base, true)
	second := testRecord(base.Add(time.Hour), false)
	for _, rec := range []model.SessionRecord{second, first} {
		if err := s.InsertSession(ctx, rec); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}

	sessions, err := s.ListSessions(ctx, nil, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first.ID || sessions[1].ID != second.ID {
		t.Fatalf("expected chronological order, got %v then %v", sessions[0].ID, sessions[1].ID)
	}
	if !sessions[0].EndedAt.Equal(base) {
		t.Fatalf("expected ended_at %v, got %v", base, sessions[0].EndedAt)
	}
	if !sessions[0].Earned || sessions[1].Earned {
		t.Fatalf("earned flags did not round-trip")
	}
}

func TestListSessionsSinceAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := s.InsertSession(ctx, testRecord(base.Add(time.Duration(i)*time.Hour), true)); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}

	since := base.Add(2 * time.Hour)
	sessions, err := s.ListSessions(ctx, &since, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions since cutoff, got %d", len(sessions))
	}

	sessions, err = s.ListSessions(ctx, nil, 2)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected limit of 2 sessions, got %d", len(sessions))
	}
}

func TestGetTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	totals, err := s.GetTotals(ctx)
	if err != nil {
		t.Fatalf("GetTotals failed: %v", err)
	}
	if totals.Sessions != 0 || totals.Earned != 0 {
		t.Fatalf("expected empty totals, got %+v", totals)
	}

	if err := s.InsertSession(ctx, testRecord(base, true)); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	rec := testRecord(base.Add(time.Hour), false)
	rec.AvgIntervalMs = 250
	if err := s.InsertSession(ctx, rec); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	totals, err = s.GetTotals(ctx)
	if err != nil {
		t.Fatalf("GetTotals failed: %v", err)
	}
	if totals.Sessions != 2 || totals.Earned != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.AvgIntervalMs != 200 {
		t.Fatalf("expected mean interval 200, got %v", totals.AvgIntervalMs)
	}
}

func TestArchiveSatisfiesSink(t *testing.T) {
	s := openTestStore(t)
	if err := s.Archive(testRecord(time.Now().UTC(), true)); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	sessions, err := s.ListSessions(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 archived session, got %d", len(sessions))
	}
}
