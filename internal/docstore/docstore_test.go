package docstore

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/keywrapped/keywrapped/internal/model"
)

func TestWriteAndReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	in := map[string]int64{"keys": 42}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out map[string]int64
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out["keys"] != 42 {
		t.Fatalf("round trip lost data: %v", out)
	}
}

func TestReadJSONMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()

	var out map[string]int64
	err := ReadJSON(filepath.Join(dir, "absent.json"), &out)
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReadJSON(bad, &out); err == nil {
		t.Fatal("expected decode error for malformed document")
	}
}

func TestLoadSummaryRecoversDefaults(t *testing.T) {
	dir := t.TempDir()

	s := LoadSummary(filepath.Join(dir, "absent.json"))
	if s == nil || s.KeyCounts == nil || s.WordCounts == nil {
		t.Fatal("expected fresh summary with initialized maps for a missing file")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s = LoadSummary(corrupt)
	if s == nil || s.TotalEvents != 0 {
		t.Fatal("expected fresh summary for a corrupt file")
	}
}

func TestLoadSummaryMergesPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"total_events": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := LoadSummary(path)
	if s.TotalEvents != 7 {
		t.Fatalf("expected loaded field to survive, got %d", s.TotalEvents)
	}
	if s.KeyCounts == nil || s.DailyActivity == nil || s.WordShapes == nil {
		t.Fatal("expected absent maps to default on load")
	}
}

func TestSaveLoadIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")

	s := model.NewSummary()
	s.TotalEvents = 321
	s.KeyCounts["a"] = 100
	s.WordCounts["hello"] = 3
	s.DailyActivity["2025-06-01"] = 321
	if err := SaveSummary(path, s); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	first := LoadSummary(path)
	if err := SaveSummary(path, first); err != nil {
		t.Fatalf("resave: %v", err)
	}
	second := LoadSummary(path)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected load-save-reload to be a fixed point")
	}
}

func TestAbortedSaveLeavesPriorDocumentIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.json")

	s := model.NewSummary()
	s.TotalEvents = 11
	if err := SaveSummary(path, s); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	// A writer killed before the final rename leaves only a temp sibling.
	stale := filepath.Join(dir, "summary.json.tmp-dead")
	if err := os.WriteFile(stale, []byte(`{"total_events": 9`), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := LoadSummary(path)
	if loaded.TotalEvents != 11 {
		t.Fatalf("expected prior document to survive an aborted save, got %d events", loaded.TotalEvents)
	}
}
