// Package capture feeds key transitions into the summary accumulator. It
// defines the sink contract plus two sources: a scripted injector used by the
// mock command and a line-delimited stream source used by the live logger.
package capture

import (
	"time"

	"github.com/keywrapped/keywrapped/internal/summary"
)

// Sink consumes key transitions in event order. Press must precede the
// matching release; the accumulator drops releases it never saw pressed.
type Sink interface {
	Press(key summary.Keystroke, at time.Time)
	Release(key summary.Keystroke, at time.Time)
}

// Script replays a fixed key sequence at a constant cadence. Timestamps are
// synthesized, so the replay is deterministic and instant.
type Script struct {
	Keys       []summary.Keystroke
	IntervalMs int64
	DurationMs int64
}

// ParseSequence converts a literal sequence into keystrokes. Whitespace maps
// to the named delimiter keys; everything else is a character key.
func ParseSequence(sequence string) []summary.Keystroke {
	keys := make([]summary.Keystroke, 0, len(sequence))
	for _, r := range sequence {
		switch r {
		case ' ':
			keys = append(keys, summary.Keystroke{Name: "space"})
		case '\n':
			keys = append(keys, summary.Keystroke{Name: "enter"})
		case '\t':
			keys = append(keys, summary.Keystroke{Name: "tab"})
		default:
			keys = append(keys, summary.Keystroke{Name: string(r), Char: true})
		}
	}
	return keys
}

// Play drives the sink through the scripted sequence starting at the given
// time and returns the number of transitions delivered.
func (s Script) Play(sink Sink, start time.Time) int {
	interval := s.IntervalMs
	if interval <= 0 {
		interval = 120
	}
	duration := s.DurationMs
	if duration <= 0 {
		duration = 60
	}

	delivered := 0
	at := start
	for _, key := range s.Keys {
		sink.Press(key, at)
		sink.Release(key, at.Add(time.Duration(duration)*time.Millisecond))
		delivered += 2
		at = at.Add(time.Duration(interval) * time.Millisecond)
	}
	return delivered
}
