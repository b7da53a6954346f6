// Package alert watches live sessions for timers that ran out and tells the
// presentation layer about them.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Sessions is the part of the session manager the announcer needs.
// *engine.Manager satisfies it.
type Sessions interface {
	List(ctx context.Context) []*domain.Session
	Settle(ctx context.Context, id string) ([]*domain.Timer, error)
	Now() time.Time
}

// Option configures the announcer.
type Option func(*Announcer)

// WithInterval sets how often the announcer looks at the sessions.
func WithInterval(d time.Duration) Option {
	return func(a *Announcer) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithAlmostDone enables a one-time heads-up when a running timer has at
// most d left. Zero disables it.
func WithAlmostDone(d time.Duration) Option {
	return func(a *Announcer) {
		a.almostDone = d
	}
}

// Announcer polls the session manager and notifies once per completed
// timer. Remaining time is always recomputed by the timers themselves;
// the announcer only observes and then persists what it observed through
// the manager.
type Announcer struct {
	sessions   Sessions
	notifier   domain.Notifier
	log        *logger.Logger
	interval   time.Duration
	almostDone time.Duration

	mu     sync.Mutex
	primed bool
	done   map[string]struct{}
	warned map[string]struct{}
}

// New creates an announcer. Call Run to start it.
func New(sessions Sessions, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Announcer {
	a := &Announcer{
		sessions: sessions,
		notifier: notifier,
		log:      log.Named("alert"),
		interval: time.Second,
		done:     make(map[string]struct{}),
		warned:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run checks the sessions every interval until ctx is cancelled.
func (a *Announcer) Run(ctx context.Context) error {
	a.Prime(ctx)
	a.log.Info("announcer started (interval=%s)", a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("announcer stopped")
			return nil
		case <-ticker.C:
			a.Check(ctx)
		}
	}
}

// Prime marks every timer already recorded as completed as announced, so a
// restart does not repeat alerts the cook has already heard.
func (a *Announcer) Prime(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.primed {
		return
	}
	for _, s := range a.sessions.List(ctx) {
		for _, t := range s.Timers {
			if t.Status == domain.TimerCompleted {
				a.done[timerKey(s.ID, t.ID)] = struct{}{}
			}
		}
	}
	a.primed = true
}

// Check runs one pass over all sessions and returns how many completion
// alerts it sent.
func (a *Announcer) Check(ctx context.Context) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.sessions.Now()
	live := make(map[string]struct{})
	sent := 0

	for _, s := range a.sessions.List(ctx) {
		unsettled := false
		for _, t := range s.Timers {
			key := timerKey(s.ID, t.ID)
			live[key] = struct{}{}

			switch t.StatusAt(now) {
			case domain.TimerCompleted:
				if t.Status == domain.TimerRunning {
					unsettled = true
				}
				if _, ok := a.done[key]; ok {
					continue
				}
				a.done[key] = struct{}{}
				a.urgent(ctx, completedMessage(s, t))
				sent++
			case domain.TimerRunning:
				a.maybeWarn(ctx, key, s, t, now)
			}
		}

		if unsettled {
			if _, err := a.sessions.Settle(ctx, s.ID); err != nil {
				a.log.Warn("settling timers of session %s: %v", s.ID, err)
			}
		}
	}

	a.forget(live)
	return sent
}

func (a *Announcer) maybeWarn(ctx context.Context, key string, s *domain.Session, t *domain.Timer, now time.Time) {
	if a.almostDone <= 0 {
		return
	}
	if _, ok := a.warned[key]; ok {
		return
	}
	left := t.RemainingAt(now)
	// Short timers would warn the moment they start.
	if left > a.almostDone || t.Duration() <= a.almostDone {
		return
	}
	a.warned[key] = struct{}{}
	msg := fmt.Sprintf("%s is almost done: %s left.", t.Label, domain.FormatSeconds(t.SecondsRemaining(now)))
	if err := a.notifier.Notify(ctx, msg); err != nil {
		a.log.Error("notifying session %s: %v", s.ID, err)
	}
}

func (a *Announcer) urgent(ctx context.Context, msg string) {
	a.log.Debug("alert: %s", msg)
	if err := a.notifier.NotifyUrgent(ctx, msg); err != nil {
		a.log.Error("notifying: %v", err)
	}
}

// forget drops bookkeeping for timers whose session is gone.
func (a *Announcer) forget(live map[string]struct{}) {
	for key := range a.done {
		if _, ok := live[key]; !ok {
			delete(a.done, key)
		}
	}
	for key := range a.warned {
		if _, ok := live[key]; !ok {
			delete(a.warned, key)
		}
	}
}

func completedMessage(s *domain.Session, t *domain.Timer) string {
	return fmt.Sprintf("%s is done! (%s)", t.Label, s.Recipe.Title)
}

func timerKey(sessionID, timerID string) string {
	return sessionID + "/" + timerID
}
