package capture

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/keywrapped/keywrapped/internal/summary"
	"github.com/keywrapped/keywrapped/internal/trace"
)

// transition is one line of the stream wire format. The timestamp is
// RFC3339Nano and optional; absent timestamps use the wall clock, so a live
// adapter only has to emit type and key.
type transition struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	Char      bool   `json:"char"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Stream reads newline-delimited JSON transitions from an OS keyboard
// adapter and forwards them to a sink. Malformed lines are logged and
// skipped; a read failure from the adapter is fatal to the stream.
type Stream struct {
	Reader io.Reader
	Trace  *trace.Log
	Now    func() time.Time
}

// Run consumes the stream until EOF, a read error, or context cancellation.
// It returns nil on clean EOF; the caller decides what an adapter failure
// means for process health.
func (s *Stream) Run(ctx context.Context, sink Sink) error {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	scanner := bufio.NewScanner(s.Reader)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var tr transition
		if err := json.Unmarshal([]byte(line), &tr); err != nil {
			s.Trace.Appendf("Dropped malformed transition: %v", err)
			continue
		}
		if tr.Key == "" {
			s.Trace.Append("Dropped transition without a key name.")
			continue
		}

		at := now()
		if tr.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339Nano, tr.Timestamp)
			if err != nil {
				s.Trace.Appendf("Dropped transition with bad timestamp %q: %v", tr.Timestamp, err)
				continue
			}
			at = parsed
		}

		key := summary.Keystroke{Name: tr.Key, Char: tr.Char}
		switch tr.Type {
		case "press":
			sink.Press(key, at)
		case "release":
			sink.Release(key, at)
		default:
			s.Trace.Appendf("Dropped transition with unknown type %q.", tr.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read key transitions: %w", err)
	}
	return nil
}
