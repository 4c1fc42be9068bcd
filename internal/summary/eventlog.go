package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keywrapped/keywrapped/internal/model"
)

// EventLog appends finalized key events as newline-delimited JSON. The log
// is audit output only and is never read back by the logger.
type EventLog struct {
	file *os.File
}

// OpenEventLog opens path for appending, creating parent directories as
// needed.
func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &EventLog{file: file}, nil
}

// Append writes one event as a single JSON line. A nil log discards the
// event.
func (l *EventLog) Append(ev model.KeyEvent) error {
	if l == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Close closes the underlying file. A nil log is a no-op.
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}
