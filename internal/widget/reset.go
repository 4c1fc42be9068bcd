package widget

import (
	"fmt"
	"time"

	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/model"
)

// DefaultSnapshot is the zeroed progress document written on reset.
func DefaultSnapshot(mode Mode, at time.Time) model.Snapshot {
	if mode == "" {
		mode = ModeReal
	}
	return model.Snapshot{
		Timestamp:          at.Unix(),
		Mode:               string(mode),
		KeyTarget:          5000,
		SpeedTarget:        speedTarget,
		HandshakeTarget:    handshakeTarget,
		WordAccuracyTarget: accuracyScoreTarget,
	}
}

// ResetProgress overwrites the progress document with the zeroed snapshot.
func ResetProgress(path string, mode Mode, at time.Time) error {
	if err := docstore.WriteJSON(path, DefaultSnapshot(mode, at)); err != nil {
		return fmt.Errorf("failed to reset progress snapshot: %w", err)
	}
	return nil
}
