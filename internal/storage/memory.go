package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore keeps encoded snapshots in memory. It has the same copy
// semantics as the durable stores, which makes it the store of choice in
// tests. Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		log:     log.Named("memory-store"),
	}
}

// Save stores a snapshot of the session. Overwrites if it already exists.
func (s *MemoryStore) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := Encode(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving session %s (step=%d, timers=%d)", session.ID, session.CurrentStep, len(session.Timers))
	s.records[session.ID] = b
	return nil
}

// Load decodes the snapshot stored under id.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	b, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return Decode(b)
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// List decodes every stored snapshot, ordered by session ID.
func (s *MemoryStore) List(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	s.log.Debug("listing sessions, count=%d", len(out))
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
