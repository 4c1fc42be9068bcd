package insight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
)

func sampleSummary() *model.Summary {
	s := model.NewSummary()
	s.TotalEvents = 1000
	s.Letters = 900
	s.Actions = 100
	s.Words = 150
	s.RageClicks = 12
	s.LongPauses = 5
	s.WordCounts = map[string]int64{"keyboard": 30, "typing": 20, "hello": 10}
	s.WordPairs = map[string]map[string]int64{"hello": {"keyboard": 7}}
	s.KeyPairs = map[string]map[string]int64{"a": {"p": 40}}
	s.DailyRage = map[string]int64{"2025-06-01": 8, "2025-06-02": 4}
	s.DailyWordCounts = map[string]map[string]int64{
		"2025-06-01": {"keyboard": 9, "typing": 3},
	}
	s.WordDurations = map[string]*model.WordDurationStat{
		"keyboard": {Count: 4, TotalMs: 2000},
		"typing":   {Count: 2, TotalMs: 500},
	}
	s.KeyPressLengths = map[string]*model.RunningStat{
		"a": {Count: 100, TotalMs: 4000},
		"b": {Count: 50, TotalMs: 1000},
	}
	s.IntervalStats = model.RunningStat{Count: 999, TotalMs: 199800}
	s.TypingProfile = model.TypingProfile{
		AvgInterval:    200,
		AvgPressLength: 33.3,
		WPM:            300,
		LongPauseRate:  0.005,
	}
	return s
}

func TestFallbackAnalysisDeterministicAndNonEmpty(t *testing.T) {
	s := sampleSummary()
	first := FallbackAnalysis(s, false)
	second := FallbackAnalysis(s, false)
	if first != second {
		t.Fatalf("fallback analysis is not deterministic:\n%s\nvs\n%s", first, second)
	}
	if !strings.Contains(first, "Top words: keyboard, typing, hello.") {
		t.Fatalf("expected top words in analysis, got:\n%s", first)
	}
	if !strings.Contains(first, "Rage peak on 2025-06-01 with 8 bursts.") {
		t.Fatalf("expected rage peak in analysis, got:\n%s", first)
	}

	empty := FallbackAnalysis(model.NewSummary(), false)
	if empty == "" {
		t.Fatalf("fallback analysis must never be empty")
	}
}

func TestFallbackSampleModeNote(t *testing.T) {
	text := FallbackAnalysis(model.NewSummary(), true)
	if !strings.Contains(text, "sample insight") {
		t.Fatalf("expected sample note, got:\n%s", text)
	}
}

func TestFallbackStructuredCards(t *testing.T) {
	structured := fallbackStructured(sampleSummary(), false)
	if structured.AnalysisText == "" {
		t.Fatalf("structured analysis text is empty")
	}
	tags := make([]string, 0, len(structured.Insights))
	for _, card := range structured.Insights {
		if card.Title == "" || card.Body == "" {
			t.Fatalf("card %q has empty fields: %+v", card.Tag, card)
		}
		tags = append(tags, card.Tag)
	}
	want := []string{"Persona", "Keyboard age", "Tempo", "Vocabulary", "Rhythm"}
	if len(tags) != len(want) {
		t.Fatalf("expected %d cards, got %v", len(want), tags)
	}
	for i, tag := range want {
		if tags[i] != tag {
			t.Fatalf("expected card %q at %d, got %q", tag, i, tags[i])
		}
	}
}

func TestKeyboardAgeBounds(t *testing.T) {
	if age := keyboardAge(model.NewSummary()); age < 0.5 || age > 12 {
		t.Fatalf("age out of range for empty summary: %v", age)
	}
	fast := model.NewSummary()
	fast.TypingProfile = model.TypingProfile{AvgInterval: 1, AvgPressLength: 1, WPM: 60000}
	if age := keyboardAge(fast); age != 12 {
		t.Fatalf("expected age capped at 12, got %v", age)
	}
}

func TestBuildPromptIncludesAggregates(t *testing.T) {
	prompt := BuildPrompt(sampleSummary())
	for _, want := range []string{
		"Total presses: 1000",
		"Word highlights: keyboard, typing, hello",
		"Fastest words: typing (250ms), keyboard (500ms)",
		"hello->keyboard",
		"Key dwellers:",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestParseModelResponse(t *testing.T) {
	doc := parseModelResponse(`{"analysis_text":"hi","insights":[{"tag":"Tempo","title":"t","body":"b"}]}`)
	if doc.AnalysisText != "hi" || doc.Structured == nil || len(doc.Structured.Insights) != 1 {
		t.Fatalf("unexpected parsed document: %+v", doc)
	}

	doc = parseModelResponse("plain words")
	if doc.AnalysisText != "plain words" || doc.Structured != nil {
		t.Fatalf("expected free text passthrough, got %+v", doc)
	}
}

func TestGenerateFallsBackWithoutKey(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "insight.json")
	doc, err := Generate(context.Background(), sampleSummary(), Options{
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.AnalysisText == "" || doc.Structured == nil {
		t.Fatalf("expected fallback document, got %+v", doc)
	}

	var meta Meta
	if err := docstore.ReadJSON(MetaPath(outputPath), &meta); err != nil {
		t.Fatalf("failed to read meta: %v", err)
	}
	if meta.LastSuccess {
		t.Fatalf("fallback must not mark success")
	}
	if meta.SummaryHash == "" {
		t.Fatalf("expected summary hash recorded")
	}
}

func TestGenerateUsesModelAndGates(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"analysis_text\":\"model text\",\"insights\":[]}"}}]}`))
	}))
	defer server.Close()

	settings := config.InsightSettings{
		Model:       "gpt-4o-mini",
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Temperature: 0.4,
		Timeout:     5 * time.Second,
	}
	outputPath := filepath.Join(t.TempDir(), "insight.json")
	s := sampleSummary()

	doc, err := Generate(context.Background(), s, Options{
		Settings:   settings,
		Client:     NewClient(settings),
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.AnalysisText != "model text" {
		t.Fatalf("expected model text, got %q", doc.AnalysisText)
	}
	if calls != 1 {
		t.Fatalf("expected 1 model call, got %d", calls)
	}

	// An unchanged summary reuses the persisted insight without a call.
	doc, err = Generate(context.Background(), s, Options{
		Settings:   settings,
		Client:     NewClient(settings),
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Generate failed on reuse: %v", err)
	}
	if doc.AnalysisText != "model text" || calls != 1 {
		t.Fatalf("expected gated reuse, got %q after %d calls", doc.AnalysisText, calls)
	}

	// A changed summary triggers a fresh call.
	s.TotalEvents++
	if _, err := Generate(context.Background(), s, Options{
		Settings:   settings,
		Client:     NewClient(settings),
		OutputPath: outputPath,
	}); err != nil {
		t.Fatalf("Generate failed on change: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected second call after change, got %d", calls)
	}
}

func TestGenerateFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	settings := config.InsightSettings{
		APIKey:  "bad-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}
	doc, err := Generate(context.Background(), sampleSummary(), Options{
		Settings: settings,
		Client:   NewClient(settings),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.AnalysisText == "" || doc.Structured == nil {
		t.Fatalf("expected fallback after server error, got %+v", doc)
	}
}
