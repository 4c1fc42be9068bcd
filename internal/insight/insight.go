package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/trace"
)

// Card is one structured insight entry.
type Card struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Structured is the machine-readable portion of an insight document.
type Structured struct {
	AnalysisText string `json:"analysis_text"`
	Insights     []Card `json:"insights"`
}

// Document is the persisted insight output.
type Document struct {
	AnalysisText string      `json:"analysis_text"`
	Structured   *Structured `json:"structured,omitempty"`
}

// Meta records the state of the last generation run, gating repeat model
// calls while the summary is unchanged.
type Meta struct {
	SummaryHash string `json:"summary_hash"`
	LastSuccess bool   `json:"last_success"`
}

// Options configures insight generation.
type Options struct {
	Settings   config.InsightSettings
	Client     *Client
	SampleMode bool
	OutputPath string
	Trace      *trace.Log
}

// MetaPath returns the sidecar metadata path for an output document.
func MetaPath(outputPath string) string {
	return outputPath + ".meta"
}

// SummaryHash fingerprints the summary document content.
func SummaryHash(s *model.Summary) string {
	payload, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// Generate produces an insight document for the summary, calling the
// configured model when credentials exist and falling back to the local
// heuristic on any failure. The result is persisted to OutputPath when set,
// and is never empty.
func Generate(ctx context.Context, s *model.Summary, opts Options) (Document, error) {
	hash := SummaryHash(s)

	if opts.OutputPath != "" {
		var meta Meta
		if err := docstore.ReadJSON(MetaPath(opts.OutputPath), &meta); err == nil &&
			meta.SummaryHash == hash && meta.LastSuccess {
			var existing Document
			if err := docstore.ReadJSON(opts.OutputPath, &existing); err == nil && existing.AnalysisText != "" {
				opts.Trace.Appendf("Summary unchanged (%s); reusing existing insight.", hash)
				return existing, nil
			}
		}
	}

	client := opts.Client
	if client == nil && opts.Settings.APIKey != "" {
		client = NewClient(opts.Settings)
	}

	var doc Document
	success := false
	if client == nil {
		structured := fallbackStructured(s, opts.SampleMode)
		doc = Document{AnalysisText: structured.AnalysisText, Structured: structured}
		opts.Trace.Append("No API key configured; fallback insight generated from local heuristics.")
	} else {
		raw, err := client.Complete(ctx, BuildPrompt(s))
		if err != nil {
			opts.Trace.Appendf("Insight request failed: %v", err)
			structured := fallbackStructured(s, opts.SampleMode)
			doc = Document{AnalysisText: structured.AnalysisText, Structured: structured}
		} else {
			success = true
			doc = parseModelResponse(raw)
		}
	}

	if opts.OutputPath != "" {
		if err := docstore.WriteJSON(opts.OutputPath, doc); err != nil {
			return doc, fmt.Errorf("failed to write insight: %w", err)
		}
		if err := docstore.WriteJSON(MetaPath(opts.OutputPath), Meta{SummaryHash: hash, LastSuccess: success}); err != nil {
			return doc, fmt.Errorf("failed to write insight meta: %w", err)
		}
	}
	return doc, nil
}

// parseModelResponse accepts either the requested JSON shape or free text.
func parseModelResponse(raw string) Document {
	var structured Structured
	if err := json.Unmarshal([]byte(raw), &structured); err == nil && structured.AnalysisText != "" {
		return Document{AnalysisText: structured.AnalysisText, Structured: &structured}
	}
	return Document{AnalysisText: raw}
}

// BuildPrompt renders the summary into the analysis prompt.
func BuildPrompt(s *model.Summary) string {
	top := topWords(s, 5)
	fastest := fastestWords(s, 5)
	_, rageCount, hasRage := rageDay(s)
	day, hasDay := bestWordDay(s)
	typing := deriveProfile(s)

	var pairs []string
	for _, p := range sortedPairs(s.WordPairs, 3) {
		pairs = append(pairs, fmt.Sprintf("%s->%s", p.From, p.To))
	}

	topNames := make([]string, 0, 3)
	for _, entry := range top {
		if len(topNames) == 3 {
			break
		}
		topNames = append(topNames, entry.Word)
	}
	fastNames := make([]string, 0, len(fastest))
	for _, entry := range fastest {
		fastNames = append(fastNames, fmt.Sprintf("%s (%dms)", entry.Word, entry.AvgMs))
	}

	dayDate, dayWord := "—", "—"
	if hasDay {
		dayDate, dayWord = day.Date, day.TopWord
	}
	dailyHigh := int64(0)
	if hasRage {
		dailyHigh = rageCount
	}

	var b strings.Builder
	b.WriteString("You are KeyboardAI. Analyze the following keyboard summary data and respond with JSON only.\n")
	b.WriteString("Address the user directly using \"you\" (no references to \"the writer\" or third-person). Keep the response insightful and playful but sharp.\n")
	b.WriteString("Provide an \"analysis_text\" string and an \"insights\" array.\n")
	b.WriteString("Each insight must have \"tag\", \"title\", \"body\" covering:\n")
	b.WriteString("- A persona label and why you call the typist that.\n")
	b.WriteString("- A keyboard age estimate described humorously, referencing speed/presses/pauses.\n")
	b.WriteString("- Tempo notes (wpm, intervals, long holds) describing how it feels to type like you do.\n")
	b.WriteString("- Favorite words with quick commentary and the vibe they create for you.\n")
	b.WriteString("- Fastest words with durations, standout days, and layout thoughts for your most fluent transitions.\n")
	b.WriteString("\nReturn valid JSON only and keep it double-quoted. No markdown wrappers.\n\n")
	fmt.Fprintf(&b, "Total presses: %d\n", s.TotalEvents)
	fmt.Fprintf(&b, "Letters: %d, Actions: %d\n", s.Letters, s.Actions)
	fmt.Fprintf(&b, "Rage bursts: %d (daily high %d)\n", s.RageClicks, dailyHigh)
	fmt.Fprintf(&b, "Word highlights: %s\n", strings.Join(topNames, ", "))
	fmt.Fprintf(&b, "Fastest words: %s\n", strings.Join(fastNames, ", "))
	fmt.Fprintf(&b, "Word pairs: top sequences %s\n", strings.Join(pairs, ", "))
	fmt.Fprintf(&b, "Word day: %s (top word %s)\n", dayDate, dayWord)
	fmt.Fprintf(&b, "Typing speed: %g wpm, avg interval %gms, avg press %gms, long pause rate %.1f%%.\n",
		typing.WPM, typing.AvgInterval, typing.AvgPressLength, typing.LongPauseRate*100)
	fmt.Fprintf(&b, "Word shapes: %s\n", joinOrDash(wordShapeNotes(s, 4)))
	fmt.Fprintf(&b, "Word transitions: %s\n", joinOrDash(transitionNotes(s, 4)))
	fmt.Fprintf(&b, "Key adjacency: %s\n", joinOrDash(adjacencyNotes(s, 4)))
	fmt.Fprintf(&b, "Key dwellers: %s\n", formatKeyHolds(keyHolds(s, 4)))
	b.WriteString("Keyboard interface story: Sketch a vivid narrative of how you physically engage the keyboard, leaning on dwell stats and rhythm.\n")
	return b.String()
}

// FallbackAnalysis is the deterministic offline narrative. It always
// produces non-empty text, even for an all-zero summary.
func FallbackAnalysis(s *model.Summary, sampleMode bool) string {
	age := keyboardAge(s)
	typing := deriveProfile(s)
	top := joinWordsOrDash(topWords(s, 3))
	fastNames := make([]string, 0, 3)
	for _, entry := range fastestWords(s, 3) {
		fastNames = append(fastNames, entry.Word)
	}
	fast := joinOrDash(fastNames)

	parts := []string{
		fmt.Sprintf("Keyboard age: %g years, with %g WPM, %gms median pauses, and %gms key holds.",
			age, typing.WPM, typing.AvgInterval, typing.AvgPressLength),
		fmt.Sprintf("Keyboard age reasoning: %g WPM speed, %gms holds, and %.1f%% long pauses lock in this age, together with signature words of %s.",
			typing.WPM, typing.AvgPressLength, typing.LongPauseRate*100, top),
		fmt.Sprintf("Top words: %s.", top),
		fmt.Sprintf("Fastest words: %s.", fast),
		fmt.Sprintf("Long pauses strike at roughly %.1f%% of presses.", typing.LongPauseRate*100),
	}
	if notes := wordShapeNotes(s, 2); len(notes) > 0 {
		parts = append(parts, fmt.Sprintf("Word shapes: %s.", strings.Join(notes, ", ")))
	}
	if notes := transitionNotes(s, 2); len(notes) > 0 {
		parts = append(parts, fmt.Sprintf("Top transitions: %s.", strings.Join(notes, ", ")))
	}
	if holds := keyHolds(s, 2); len(holds) > 0 {
		parts = append(parts, fmt.Sprintf("Key dwellers: %s.", formatKeyHolds(holds)))
	}
	if date, count, ok := rageDay(s); ok {
		parts = append(parts, fmt.Sprintf("Rage peak on %s with %d bursts.", date, count))
	}
	if day, ok := bestWordDay(s); ok {
		parts = append(parts, fmt.Sprintf("Word feast on %s with %s %d times.", day.Date, day.TopWord, day.TopValue))
	}
	if sampleMode {
		parts = append(parts, "Offline sample insight keeps the dashboard populated.")
	}
	return strings.Join(parts, " ")
}

func fallbackStructured(s *model.Summary, sampleMode bool) *Structured {
	return &Structured{
		AnalysisText: FallbackAnalysis(s, sampleMode),
		Insights: []Card{
			personaCard(s),
			keyboardAgeCard(s),
			tempoCard(s),
			vocabularyCard(s),
			rhythmCard(s),
		},
	}
}

func personaCard(s *model.Summary) Card {
	total := s.TotalEvents
	if total < 1 {
		total = 1
	}
	letterRatio := float64(s.Letters) / float64(total)
	rageRatio := float64(s.RageClicks) / float64(total)
	actionRatio := float64(s.Actions) / float64(total)

	signature := "your cadence"
	if top := topWords(s, 1); len(top) > 0 {
		signature = top[0].Word
	}

	switch {
	case rageRatio > 0.02:
		return Card{Tag: "Persona", Title: "Blazing Editor",
			Body: fmt.Sprintf("Rapid edits stand out while %q anchors your tempo spikes.", signature)}
	case letterRatio > 0.85:
		return Card{Tag: "Persona", Title: "Midnight Wordsmith",
			Body: fmt.Sprintf("Long-form letters dominate and %q is your poetic motif.", signature)}
	case actionRatio > 0.35:
		return Card{Tag: "Persona", Title: "Navigator",
			Body: fmt.Sprintf("Modifiers and navigation keys stay busy while %q steadies your path.", signature)}
	default:
		return Card{Tag: "Persona", Title: "Steady Storyteller",
			Body: fmt.Sprintf("%q keeps your balanced sessions resilient.", signature)}
	}
}

func keyboardAgeCard(s *model.Summary) Card {
	typing := deriveProfile(s)
	return Card{
		Tag:   "Keyboard age",
		Title: fmt.Sprintf("%g years", keyboardAge(s)),
		Body: fmt.Sprintf("Speed %g WPM, %gms pauses, and %gms holds support this age.",
			typing.WPM, typing.AvgInterval, typing.AvgPressLength),
	}
}

func tempoCard(s *model.Summary) Card {
	typing := deriveProfile(s)
	return Card{
		Tag:   "Tempo",
		Title: fmt.Sprintf("%g WPM rhythm", typing.WPM),
		Body: fmt.Sprintf("Long pause rate is %.1f%% while spells stay compact (%gms) for fluent typing.",
			typing.LongPauseRate*100, typing.AvgPressLength),
	}
}

func vocabularyCard(s *model.Summary) Card {
	words := joinWordsOrDash(topWords(s, 3))
	if words == "—" {
		words = "No words yet"
	}
	return Card{
		Tag:   "Vocabulary",
		Title: "Top words",
		Body:  fmt.Sprintf("%s define your narrative and signal what your keyboard loves.", words),
	}
}

func rhythmCard(s *model.Summary) Card {
	var parts []string
	if date, count, ok := rageDay(s); ok {
		parts = append(parts, fmt.Sprintf("Rage peak on %s with %d bursts.", date, count))
	}
	if day, ok := bestWordDay(s); ok {
		parts = append(parts, fmt.Sprintf("%s featured %s %d times.", day.Date, day.TopWord, day.TopValue))
	}
	body := strings.Join(parts, " ")
	if body == "" {
		body = "No standout rhythms yet."
	}
	return Card{Tag: "Rhythm", Title: "Rhythm story", Body: body}
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, ", ")
}

func joinWordsOrDash(entries []wordCount) string {
	if len(entries) == 0 {
		return "—"
	}
	words := make([]string, 0, len(entries))
	for _, entry := range entries {
		words = append(words, entry.Word)
	}
	return strings.Join(words, ", ")
}
