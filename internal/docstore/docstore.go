// Package docstore handles atomic JSON document persistence.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keywrapped/keywrapped/internal/model"
)

// WriteJSON atomically replaces the document at path with the JSON encoding
// of payload. The payload is written to a temporary sibling, flushed and
// fsynced, then renamed over the destination so a reader never observes a
// partially written document.
func WriteJSON(path string, payload any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	enc := json.NewEncoder(tmpFile)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync document: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// ReadJSON decodes the document at path into out. Missing files report
// os.ErrNotExist; malformed content reports a decode error.
func ReadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadSummary reads a summary document, synthesizing defaults for anything
// missing. An absent or corrupt file yields a fresh summary; load never
// fails fatally.
func LoadSummary(path string) *model.Summary {
	var s model.Summary
	if err := ReadJSON(path, &s); err != nil {
		return model.NewSummary()
	}
	s.EnsureDefaults()
	return &s
}

// SaveSummary atomically persists the summary document.
func SaveSummary(path string, s *model.Summary) error {
	return WriteJSON(path, s)
}
