package engine

import (
	"context"
	"time"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

// StepResult is returned by the navigation operations.
type StepResult struct {
	CurrentStep int         `json:"current_step"`
	TotalSteps  int         `json:"total_steps"`
	StepData    domain.Step `json:"step_data"`
}

func stepResult(s *domain.Session) StepResult {
	return StepResult{
		CurrentStep: s.CurrentStep,
		TotalSteps:  s.TotalSteps(),
		StepData:    s.Current(),
	}
}

// State renders the committed state of a session. It never writes.
func (m *Manager) State(ctx context.Context, id string) (domain.SessionView, error) {
	s, err := m.current(ctx, id)
	if err != nil {
		return domain.SessionView{}, err
	}
	return s.View(m.now()), nil
}

// Step moves the step cursor. next and previous clamp at the ends, repeat
// leaves it where it is.
func (m *Manager) Step(ctx context.Context, id string, action domain.NavAction) (StepResult, error) {
	s, err := m.WithSession(ctx, id, func(s *domain.Session, _ time.Time) error {
		_, err := s.Navigate(action)
		return err
	})
	if err != nil {
		return StepResult{}, err
	}
	return stepResult(s), nil
}

// JumpTo moves the cursor straight to step n.
func (m *Manager) JumpTo(ctx context.Context, id string, n int) (StepResult, error) {
	s, err := m.WithSession(ctx, id, func(s *domain.Session, _ time.Time) error {
		_, err := s.JumpTo(n)
		return err
	})
	if err != nil {
		return StepResult{}, err
	}
	return stepResult(s), nil
}

// AddTimer starts a labeled countdown. An unparsable duration leaves the
// session untouched.
func (m *Manager) AddTimer(ctx context.Context, id, label, duration string) (domain.TimerView, error) {
	var timerID string
	s, err := m.WithSession(ctx, id, func(s *domain.Session, now time.Time) error {
		t, err := s.AddTimer(label, duration, now)
		if err != nil {
			return err
		}
		timerID = t.ID
		return nil
	})
	if err != nil {
		return domain.TimerView{}, err
	}
	m.log.Info("session %s: timer %s (%s) started", id, timerID, s.Timers[timerID].Label)
	return s.Timers[timerID].View(m.now()), nil
}

// PauseTimer freezes one timer.
func (m *Manager) PauseTimer(ctx context.Context, id, timerID string) (domain.TimerView, error) {
	return m.timerOp(ctx, id, timerID, (*domain.Session).PauseTimer)
}

// ResumeTimer restarts a paused timer from where it was frozen.
func (m *Manager) ResumeTimer(ctx context.Context, id, timerID string) (domain.TimerView, error) {
	return m.timerOp(ctx, id, timerID, (*domain.Session).ResumeTimer)
}

// CancelTimer stops a timer for good.
func (m *Manager) CancelTimer(ctx context.Context, id, timerID string) (domain.TimerView, error) {
	return m.timerOp(ctx, id, timerID, (*domain.Session).CancelTimer)
}

func (m *Manager) timerOp(ctx context.Context, id, timerID string, fn func(*domain.Session, string, time.Time) (*domain.Timer, error)) (domain.TimerView, error) {
	var at time.Time
	s, err := m.WithSession(ctx, id, func(s *domain.Session, now time.Time) error {
		at = now
		_, err := fn(s, timerID, now)
		return err
	})
	if err != nil {
		return domain.TimerView{}, err
	}
	return s.Timers[timerID].View(at), nil
}

// AddNote appends a note to the session log.
func (m *Manager) AddNote(ctx context.Context, id, text string) (domain.Note, error) {
	var note domain.Note
	_, err := m.WithSession(ctx, id, func(s *domain.Session, now time.Time) error {
		var err error
		note, err = s.AddNote(text, now)
		return err
	})
	return note, err
}
