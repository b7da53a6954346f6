// Package storage provides durable session snapshot stores.
//
// Every store keeps exactly one record per session ID holding the complete
// session: recipe copy, step cursor, pause flag, timers with their absolute
// timestamps, and notes. Records are JSON encoded by [Encode] and
// validated on the way back in by [Decode].
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

// RecordVersion is the snapshot layout written by this build.
const RecordVersion = 1

// Record is the persisted envelope around a session snapshot.
type Record struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Session *domain.Session `json:"session"`
}

// Encode serialises a session snapshot.
func Encode(s *domain.Session) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, fmt.Errorf("encoding snapshot: session without id")
	}
	b, err := json.Marshal(Record{Version: RecordVersion, SavedAt: time.Now().UTC(), Session: s})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", s.ID, err)
	}
	return b, nil
}

// Decode parses and checks a snapshot.
func Decode(b []byte) (*domain.Session, error) {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("decoding snapshot: unsupported version %d", rec.Version)
	}
	if rec.Session == nil {
		return nil, fmt.Errorf("decoding snapshot: missing session")
	}
	if err := rec.Session.Check(); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", rec.Session.ID, err)
	}
	return rec.Session, nil
}
