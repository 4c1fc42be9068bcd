// Package health writes the logger status side-channel document.
package health

import (
	"time"

	"github.com/keywrapped/keywrapped/internal/docstore"
)

// Logger lifecycle statuses surfaced to external monitoring.
const (
	StatusStarting  = "starting"
	StatusListening = "listening"
	StatusStopped   = "stopped"
	StatusError     = "error"
)

// Status is the small JSON document written on lifecycle transitions.
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Write persists a status transition to path.
func Write(path, status, message string) error {
	return docstore.WriteJSON(path, Status{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// Load reads the current status document. A missing or corrupt file yields
// the zero status.
func Load(path string) Status {
	var s Status
	if err := docstore.ReadJSON(path, &s); err != nil {
		return Status{}
	}
	return s
}
