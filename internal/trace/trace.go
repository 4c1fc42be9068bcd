// Package trace appends timestamped diagnostic lines to a shared log file.
package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Log writes timestamped lines to an append-only file. A nil *Log discards
// everything, so callers never need to guard their trace calls.
type Log struct {
	path string
	now  func() time.Time
}

// New returns a trace log writing to path.
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Appendf formats and appends one line. Failures are swallowed: tracing is
// best-effort and must never take down the logger.
func (l *Log) Appendf(format string, args ...any) {
	if l == nil {
		return
	}
	l.Append(fmt.Sprintf(format, args...))
}

// Append appends one line with a local timestamp prefix.
func (l *Log) Append(message string) {
	if l == nil || message == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() {
		_ = file.Close()
	}()
	stamp := l.now().Format("2006-01-02 15:04:05")
	if _, err := fmt.Fprintf(file, "%s %s\n", stamp, message); err != nil {
		// Best-effort trace write.
		_ = err
	}
}
