package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
	"github.com/keywrapped/keywrapped/internal/trace"
)

// FeedDocument is the menu-bar feed entry produced from a progress
// snapshot.
type FeedDocument struct {
	Timestamp    int64          `json:"timestamp"`
	Mode         string         `json:"mode"`
	Iteration    int64          `json:"iteration"`
	AnalysisText string         `json:"analysis_text"`
	Diff         []string       `json:"diff"`
	DiffSummary  string         `json:"diff_summary"`
	Progress     model.Snapshot `json:"progress"`
}

// FeedState persists bridge continuity between cycles.
type FeedState struct {
	LastHash     string         `json:"last_hash"`
	LastSnapshot model.Snapshot `json:"last_snapshot"`
	Iteration    int64          `json:"iteration"`
}

// FeedOptions configures one bridge cycle.
type FeedOptions struct {
	ProgressPath string
	FeedPath     string
	StatePath    string
	Mode         string
	DryRun       bool
	Client       *Client
	Trace        *trace.Log
	Now          func() time.Time
}

// DescribeDiff renders human-readable deltas between two snapshots.
// Movements under half a point are noise and omitted.
func DescribeDiff(current, previous model.Snapshot) []string {
	type field struct {
		label          string
		current, prior float64
	}
	fields := []field{
		{"Keystrokes", current.KeyProgress, previous.KeyProgress},
		{"Speed points", current.SpeedProgress, previous.SpeedProgress},
		{"Keyboard balance", current.HandshakeProgress, previous.HandshakeProgress},
	}
	var diffs []string
	for _, f := range fields {
		delta := f.current - f.prior
		if math.Abs(delta) < 0.5 {
			continue
		}
		direction := "up"
		if delta < 0 {
			direction = "down"
		}
		diffs = append(diffs, fmt.Sprintf("%s %s %.0f", f.label, direction, math.Abs(delta)))
	}
	return diffs
}

// BuildRingPrompt renders the snapshot and deltas into the bridge prompt.
func BuildRingPrompt(snapshot model.Snapshot, diffLines []string, mode string) string {
	diffText := strings.Join(diffLines, "; ")
	if diffText == "" {
		diffText = "steady rhythm"
	}
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are KeyboardAI for the menu bar. Mode: %s. Progress: %.0f/%.0f strokes, %d/%.0f speed points, handshake %d/%.0f, accuracy %.0f/%.0f.\n",
		mode,
		snapshot.KeyProgress, snapshot.KeyTarget,
		int(snapshot.SpeedProgress), snapshot.SpeedTarget,
		int(snapshot.HandshakeProgress), snapshot.HandshakeTarget,
		snapshot.WordAccuracyScore, snapshot.WordAccuracyTarget)
	fmt.Fprintf(&b, "Changes: %s.\n", diffText)
	b.WriteString("Offer a single encouraging sentence that nudges the user toward the next milestone.\n")
	fmt.Fprintf(&b, "Stats delta since the last insight: %s. Feel free to reference the change when crafting encouragement.", diffText)
	return b.String()
}

// FallbackFeedMessage is the offline bridge message.
func FallbackFeedMessage(snapshot model.Snapshot, diffLines []string, mode string, iteration int64) string {
	diffText := "steady rhythm"
	if len(diffLines) > 0 {
		diffText = diffLines[0]
	}
	return fmt.Sprintf("[%s] iteration %d: %s. Key strokes %d, Speed %d, Balance %d.",
		mode, iteration, diffText,
		int(snapshot.KeyProgress), int(snapshot.SpeedProgress), int(snapshot.HandshakeProgress))
}

// SnapshotHash fingerprints a progress snapshot.
func SnapshotHash(snapshot model.Snapshot) string {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return ""
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// RunFeedCycle executes one bridge iteration: read the progress snapshot,
// describe deltas against the prior state, produce a message (model or
// fallback), and persist the feed and state documents. Returns false when
// no progress snapshot exists yet.
func RunFeedCycle(ctx context.Context, opts FeedOptions) (bool, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mode := opts.Mode
	if mode == "" {
		mode = "real"
	}

	var snapshot model.Snapshot
	if err := docstore.ReadJSON(opts.ProgressPath, &snapshot); err != nil {
		return false, nil
	}

	var state FeedState
	// Missing state means a first iteration against a zero snapshot.
	_ = readStateDoc(opts.StatePath, &state)

	diffLines := DescribeDiff(snapshot, state.LastSnapshot)
	iteration := state.Iteration + 1
	diffSummary := strings.Join(diffLines, "; ")
	if diffSummary == "" {
		diffSummary = "steady rhythm"
	}

	prompt := BuildRingPrompt(snapshot, diffLines, mode)
	opts.Trace.Appendf("Feed prompt (mode %s, iteration %d): %s", mode, iteration, firstLine(prompt))

	message := FallbackFeedMessage(snapshot, diffLines, mode, iteration)
	if !opts.DryRun && opts.Client != nil {
		reply, err := opts.Client.Complete(ctx, prompt)
		if err != nil {
			opts.Trace.Appendf("Feed request failed (iteration %d, mode %s): %v", iteration, mode, err)
		} else {
			message = reply
			opts.Trace.Appendf("Feed response (iteration %d, mode %s): %s", iteration, mode, firstLine(reply))
		}
	}

	feed := FeedDocument{
		Timestamp:    now().Unix(),
		Mode:         mode,
		Iteration:    iteration,
		AnalysisText: message,
		Diff:         diffLines,
		DiffSummary:  diffSummary,
		Progress:     snapshot,
	}
	if err := docstore.WriteJSON(opts.FeedPath, feed); err != nil {
		return false, fmt.Errorf("failed to write feed: %w", err)
	}
	newState := FeedState{
		LastHash:     SnapshotHash(snapshot),
		LastSnapshot: snapshot,
		Iteration:    iteration,
	}
	if err := docstore.WriteJSON(opts.StatePath, newState); err != nil {
		return false, fmt.Errorf("failed to write feed state: %w", err)
	}
	return true, nil
}

func readStateDoc(path string, state *FeedState) error {
	if path == "" {
		return nil
	}
	return docstore.ReadJSON(path, state)
}

func firstLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 400 {
		s = s[:400]
	}
	return s
}
