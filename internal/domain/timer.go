package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimerStatus represents the state of a timer.
type TimerStatus int

const (
	TimerRunning TimerStatus = iota
	TimerPaused
	TimerCompleted
	TimerCancelled
)

// String returns a human-readable timer status.
func (t TimerStatus) String() string {
	switch t {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerCompleted:
		return "completed"
	case TimerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name so snapshots stay readable.
func (t TimerStatus) MarshalText() ([]byte, error) {
	if t < TimerRunning || t > TimerCancelled {
		return nil, fmt.Errorf("unknown timer status %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a status name.
func (t *TimerStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "running":
		*t = TimerRunning
	case "paused":
		*t = TimerPaused
	case "completed":
		*t = TimerCompleted
	case "cancelled":
		*t = TimerCancelled
	default:
		return fmt.Errorf("unknown timer status %q", b)
	}
	return nil
}

// Active reports whether the status still counts toward active timers.
func (t TimerStatus) Active() bool {
	return t == TimerRunning || t == TimerPaused
}

// Timer is a labelled countdown owned by one session.
//
// Remaining time is never stored as a counter that something ticks down.
// While running it is derived from StartedAt on every read; while paused
// it is frozen in Remaining and StartedAt is zero.
type Timer struct {
	ID              string        `json:"id"`
	Seq             int           `json:"seq"`
	Label           string        `json:"label"`
	DurationSeconds int           `json:"duration_seconds"`
	StartedAt       time.Time     `json:"started_at,omitzero"`
	Status          TimerStatus   `json:"status"`
	Remaining       time.Duration `json:"remaining,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NewTimer parses duration and returns a running timer anchored at now.
func NewTimer(id string, seq int, label, duration string, now time.Time) (*Timer, error) {
	secs, err := ParseSeconds(duration)
	if err != nil {
		return nil, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Timer"
	}
	return &Timer{
		ID:              id,
		Seq:             seq,
		Label:           label,
		DurationSeconds: secs,
		StartedAt:       now,
		Status:          TimerRunning,
		CreatedAt:       now,
	}, nil
}

// Duration returns the fixed total length of the timer.
func (t *Timer) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// RemainingAt recomputes the time left as of now, clamped to
// [0, Duration].
func (t *Timer) RemainingAt(now time.Time) time.Duration {
	switch t.Status {
	case TimerRunning:
		left := t.Duration() - now.Sub(t.StartedAt)
		return clampDuration(left, t.Duration())
	case TimerPaused:
		return clampDuration(t.Remaining, t.Duration())
	default:
		return 0
	}
}

// StatusAt returns the effective status as of now. A running timer whose
// remaining time reached zero reads as completed even before Settle has
// written that down.
func (t *Timer) StatusAt(now time.Time) TimerStatus {
	if t.Status == TimerRunning && t.RemainingAt(now) == 0 {
		return TimerCompleted
	}
	return t.Status
}

// SecondsRemaining returns the remaining time rounded up to whole seconds,
// so a timer reports zero only once it is actually done.
func (t *Timer) SecondsRemaining(now time.Time) int {
	return int(math.Ceil(t.RemainingAt(now).Seconds()))
}

// Pause freezes the remaining time. Only a running timer can be paused.
func (t *Timer) Pause(now time.Time) error {
	if st := t.StatusAt(now); st != TimerRunning {
		return fmt.Errorf("%w: timer %s is %s, cannot pause", ErrInvalidTimerState, t.ID, st)
	}
	t.Remaining = t.RemainingAt(now)
	t.StartedAt = time.Time{}
	t.Status = TimerPaused
	return nil
}

// Resume re-anchors StartedAt so that RemainingAt keeps returning the
// frozen value at the moment of resuming.
func (t *Timer) Resume(now time.Time) error {
	if t.Status != TimerPaused {
		return fmt.Errorf("%w: timer %s is %s, cannot resume", ErrInvalidTimerState, t.ID, t.Status)
	}
	elapsed := t.Duration() - clampDuration(t.Remaining, t.Duration())
	t.StartedAt = now.Add(-elapsed)
	t.Remaining = 0
	t.Status = TimerRunning
	return nil
}

// Cancel stops the timer for good.
func (t *Timer) Cancel(now time.Time) error {
	if st := t.StatusAt(now); !st.Active() {
		return fmt.Errorf("%w: timer %s is %s, cannot cancel", ErrInvalidTimerState, t.ID, st)
	}
	t.Status = TimerCancelled
	t.Remaining = 0
	return nil
}

// Settle records a completion discovered by recomputation. It reports
// whether the stored status changed.
func (t *Timer) Settle(now time.Time) bool {
	if t.Status == TimerRunning && t.RemainingAt(now) == 0 {
		t.Status = TimerCompleted
		return true
	}
	return false
}

// TimerView is the read model handed to callers.
type TimerView struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Status           string `json:"status"`
	SecondsTotal     int    `json:"seconds_total"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// View renders the timer as of now.
func (t *Timer) View(now time.Time) TimerView {
	return TimerView{
		ID:               t.ID,
		Label:            t.Label,
		Status:           t.StatusAt(now).String(),
		SecondsTotal:     t.DurationSeconds,
		SecondsRemaining: t.SecondsRemaining(now),
	}
}

func clampDuration(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}
