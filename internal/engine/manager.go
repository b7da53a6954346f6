// Package engine implements the cooking session manager: the registry of
// live sessions, per-session mutation serialization, and the durability
// boundary in front of a domain.SessionStore.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Option configures the manager.
type Option func(*Manager)

// WithClock replaces time.Now. Tests use it to move time by hand.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithResponder sets who answers Ask commands.
func WithResponder(r domain.Responder) Option {
	return func(m *Manager) {
		m.responder = r
	}
}

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithTracerProvider sets the provider spans are created from. Defaults to
// the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) {
		m.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "github.com/hammamikhairi/cookalong/internal/engine"

// Op mutates a private copy of a session. Returning an error discards the
// copy.
type Op func(s *domain.Session, now time.Time) error

// Manager owns every live session. All mutations go through WithSession,
// which serializes callers per session ID and acknowledges a mutation only
// after the store has committed it.
//
// Published sessions are never mutated in place: a mutation works on a
// clone and swaps it in after a successful save, so readers always see a
// complete committed snapshot.
type Manager struct {
	store     domain.SessionStore
	log       *logger.Logger
	responder domain.Responder
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string

	locks    *keyLock
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// Open constructs a manager on top of store and recovers every persisted
// session into memory.
func Open(ctx context.Context, store domain.SessionStore, log *logger.Logger, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:    store,
		log:      log.Named("engine"),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    generateID,
		locks:    newKeyLock(),
		sessions: make(map[string]*domain.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	// Stored snapshots keep only the wall clock, so published ones do too.
	clock := m.now
	m.now = func() time.Time { return clock().Round(0) }

	if err := m.Recover(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Recover reloads every snapshot from the store. Sessions already in
// memory are replaced by their stored version.
func (m *Manager) Recover(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "engine.Recover")
	defer span.End()

	all, err := m.store.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: recovering sessions: %w", domain.ErrPersistence, err)
	}

	m.mu.Lock()
	for _, s := range all {
		m.sessions[s.ID] = s
	}
	m.mu.Unlock()

	span.SetAttributes(attribute.Int("sessions.recovered", len(all)))
	m.log.Info("recovered %d session(s)", len(all))
	return nil
}

// Create starts a session on a copy of recipe and persists it before
// returning. Invalid recipes create and persist nothing.
func (m *Manager) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Session, error) {
	ctx, span := m.tracer.Start(ctx, "engine.Create")
	defer span.End()

	now := m.now()
	s, err := domain.StartSession(m.newID(), recipe, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", s.ID))

	unlock := m.locks.Lock(s.ID)
	defer unlock()

	if err := m.store.Save(ctx, s); err != nil {
		span.SetStatus(codes.Error, err.Error())
		m.log.Error("persisting new session %s: %v", s.ID, err)
		return nil, fmt.Errorf("%w: saving session %s: %w", domain.ErrPersistence, s.ID, err)
	}
	m.publish(s)

	m.log.Info("started session %s for recipe %q (%d steps)", s.ID, s.Recipe.Title, s.TotalSteps())
	return s.Clone(), nil
}

// Get returns a copy of the committed state of a session, loading it from
// the store when it is not in memory.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, err := m.current(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// current returns the published snapshot. Callers must not mutate it.
func (m *Manager) current(ctx context.Context, id string) (*domain.Session, error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}
	unlock := m.locks.Lock(id)
	defer unlock()
	return m.currentLocked(ctx, id)
}

// currentLocked is current for callers already holding the lock for id, so
// a concurrent Delete cannot slip between the store read and the insert.
func (m *Manager) currentLocked(ctx context.Context, id string) (*domain.Session, error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}

	s, err := m.store.Load(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading session %s: %w", domain.ErrPersistence, id, err)
	}

	m.publish(s)
	m.log.Debug("loaded session %s from store", id)
	return s, nil
}

func (m *Manager) lookup(id string) (*domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) publish(s *domain.Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// WithSession applies op to session id and persists the result. It is the
// only path by which a session changes. At most one op runs per session
// at a time. If op fails nothing changes; if the save fails the error
// wraps domain.ErrPersistence and the previous state stays in effect.
// The returned session is a copy of the committed state.
func (m *Manager) WithSession(ctx context.Context, id string, op Op) (*domain.Session, error) {
	s, _, err := m.mutate(ctx, "engine.WithSession", id, op)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// mutate is WithSession that also reports timers found complete while
// committing.
func (m *Manager) mutate(ctx context.Context, spanName, id string, op Op) (*domain.Session, []*domain.Timer, error) {
	ctx, span := m.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	unlock := m.locks.Lock(id)
	defer unlock()

	cur, err := m.currentLocked(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	next := cur.Clone()
	now := m.now()
	if err := op(next, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	done := next.SettleTimers(now)
	next.UpdatedAt = now

	if err := m.store.Save(ctx, next); err != nil {
		span.SetStatus(codes.Error, err.Error())
		m.log.Error("persisting session %s: %v", id, err)
		return nil, nil, fmt.Errorf("%w: saving session %s: %w", domain.ErrPersistence, id, err)
	}
	m.publish(next)

	for _, t := range done {
		m.log.Debug("session %s: timer %s (%s) completed", id, t.ID, t.Label)
	}
	return next, done, nil
}

// Settle persists any timer completions of session id and returns the
// timers that completed with this call.
func (m *Manager) Settle(ctx context.Context, id string) ([]*domain.Timer, error) {
	_, done, err := m.mutate(ctx, "engine.Settle", id, func(*domain.Session, time.Time) error { return nil })
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Timer, len(done))
	for i, t := range done {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

// List returns copies of all in-memory sessions, newest first.
func (m *Manager) List(ctx context.Context) []*domain.Session {
	m.mu.RLock()
	out := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a session from memory and from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	ctx, span := m.tracer.Start(ctx, "engine.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	unlock := m.locks.Lock(id)
	defer unlock()

	err := m.store.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		m.mu.RLock()
		_, inMemory := m.sessions[id]
		m.mu.RUnlock()
		if !inMemory {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
	} else if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: deleting session %s: %w", domain.ErrPersistence, id, err)
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.log.Info("deleted session %s", id)
	return nil
}

// Now returns the manager's notion of the current time.
func (m *Manager) Now() time.Time {
	return m.now()
}
