package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// NavAction is a step navigation request.
type NavAction string

const (
	NavNext     NavAction = "next"
	NavPrevious NavAction = "previous"
	NavRepeat   NavAction = "repeat"
)

// ParseNavAction converts a caller-supplied action name.
func ParseNavAction(s string) (NavAction, error) {
	switch a := NavAction(strings.ToLower(strings.TrimSpace(s))); a {
	case NavNext, NavPrevious, NavRepeat:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown step action %q", ErrValidation, s)
	}
}

// Note is one entry of the session's append-only note log.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one in-progress cooking walkthrough bound to a single recipe.
//
// A Session value is not safe for concurrent mutation; the engine hands
// each mutation a private copy and publishes it once it is durable.
type Session struct {
	ID           string            `json:"id"`
	Recipe       *Recipe           `json:"recipe"`
	CurrentStep  int               `json:"current_step"`
	Paused       bool              `json:"is_paused"`
	Timers       map[string]*Timer `json:"timers"`
	NextTimerSeq int               `json:"next_timer_seq"`
	Notes        []Note            `json:"notes"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StartSession validates the recipe and returns a session positioned on
// step 1. The session keeps its own copy of the recipe.
func StartSession(id string, recipe *Recipe, now time.Time) (*Session, error) {
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		ID:          id,
		Recipe:      recipe.Clone(),
		CurrentStep: 1,
		Timers:      make(map[string]*Timer),
		Notes:       []Note{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TotalSteps returns the fixed number of steps of the bound recipe.
func (s *Session) TotalSteps() int {
	return s.Recipe.TotalSteps()
}

// StepAt returns the 1-indexed step n.
func (s *Session) StepAt(n int) (Step, error) {
	if n < 1 || n > s.TotalSteps() {
		return Step{}, fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, n, s.TotalSteps())
	}
	st := s.Recipe.Steps[n-1]
	if st.Number == 0 {
		st.Number = n
	}
	return st, nil
}

// Current returns the step under the cursor.
func (s *Session) Current() Step {
	st, _ := s.StepAt(s.CurrentStep)
	return st
}

// Navigate moves the cursor and returns the step it lands on. Moving past
// either end clamps instead of failing.
func (s *Session) Navigate(action NavAction) (Step, error) {
	switch action {
	case NavNext:
		if s.CurrentStep < s.TotalSteps() {
			s.CurrentStep++
		}
	case NavPrevious:
		if s.CurrentStep > 1 {
			s.CurrentStep--
		}
	case NavRepeat:
	default:
		return Step{}, fmt.Errorf("%w: unknown step action %q", ErrValidation, action)
	}
	return s.Current(), nil
}

// JumpTo moves the cursor to step n. Out-of-range targets leave the
// session untouched.
func (s *Session) JumpTo(n int) (Step, error) {
	st, err := s.StepAt(n)
	if err != nil {
		return Step{}, err
	}
	s.CurrentStep = n
	return st, nil
}

// Pause marks the walkthrough as paused. Timers are not affected.
func (s *Session) Pause() {
	s.Paused = true
}

// Resume clears the paused flag. Timers are not affected.
func (s *Session) Resume() {
	s.Paused = false
}

// AddTimer creates and registers a running timer. On an invalid duration
// the session is left exactly as it was.
func (s *Session) AddTimer(label, duration string, now time.Time) (*Timer, error) {
	seq := s.NextTimerSeq + 1
	t, err := NewTimer(fmt.Sprintf("timer-%d", seq), seq, label, duration, now)
	if err != nil {
		return nil, err
	}
	if s.Timers == nil {
		s.Timers = make(map[string]*Timer)
	}
	s.NextTimerSeq = seq
	s.Timers[t.ID] = t
	return t, nil
}

// Timer looks up a timer by ID.
func (s *Session) Timer(id string) (*Timer, error) {
	t, ok := s.Timers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTimerNotFound, id)
	}
	return t, nil
}

// PauseTimer pauses one timer.
func (s *Session) PauseTimer(id string, now time.Time) (*Timer, error) {
	t, err := s.Timer(id)
	if err != nil {
		return nil, err
	}
	return t, t.Pause(now)
}

// ResumeTimer resumes one timer.
func (s *Session) ResumeTimer(id string, now time.Time) (*Timer, error) {
	t, err := s.Timer(id)
	if err != nil {
		return nil, err
	}
	return t, t.Resume(now)
}

// CancelTimer cancels one timer. The timer stays in the set.
func (s *Session) CancelTimer(id string, now time.Time) (*Timer, error) {
	t, err := s.Timer(id)
	if err != nil {
		return nil, err
	}
	return t, t.Cancel(now)
}

// SettleTimers writes down completions discovered by recomputation and
// returns the timers that just completed.
func (s *Session) SettleTimers(now time.Time) []*Timer {
	var done []*Timer
	for _, t := range s.sortedTimers() {
		if t.Settle(now) {
			done = append(done, t)
		}
	}
	return done
}

// ActiveTimers returns running and paused timers with their remaining time
// recomputed as of now. Finished timers are kept in the set but excluded.
func (s *Session) ActiveTimers(now time.Time) []TimerView {
	out := []TimerView{}
	for _, t := range s.sortedTimers() {
		if t.StatusAt(now).Active() {
			out = append(out, t.View(now))
		}
	}
	return out
}

// AllTimers returns every timer of the session in creation order.
func (s *Session) AllTimers(now time.Time) []TimerView {
	out := []TimerView{}
	for _, t := range s.sortedTimers() {
		out = append(out, t.View(now))
	}
	return out
}

func (s *Session) sortedTimers() []*Timer {
	ts := make([]*Timer, 0, len(s.Timers))
	for _, t := range s.Timers {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Seq < ts[j].Seq })
	return ts
}

// AddNote appends a note to the log.
func (s *Session) AddNote(text string, now time.Time) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, fmt.Errorf("%w: note must not be empty", ErrValidation)
	}
	n := Note{Text: text, CreatedAt: now}
	s.Notes = append(s.Notes, n)
	return n, nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Recipe = s.Recipe.Clone()
	out.Timers = make(map[string]*Timer, len(s.Timers))
	for id, t := range s.Timers {
		cp := *t
		out.Timers[id] = &cp
	}
	out.Notes = append([]Note{}, s.Notes...)
	return &out
}

// Check verifies the invariants of a session decoded from storage.
func (s *Session) Check() error {
	if s.ID == "" {
		return fmt.Errorf("%w: session without id", ErrValidation)
	}
	if err := s.Recipe.Validate(); err != nil {
		return err
	}
	if s.CurrentStep < 1 || s.CurrentStep > s.TotalSteps() {
		return fmt.Errorf("%w: session %s on step %d of %d", ErrStepOutOfRange, s.ID, s.CurrentStep, s.TotalSteps())
	}
	if s.Timers == nil {
		s.Timers = make(map[string]*Timer)
	}
	if s.Notes == nil {
		s.Notes = []Note{}
	}
	for id, t := range s.Timers {
		if t == nil || t.ID != id || t.DurationSeconds <= 0 {
			return fmt.Errorf("%w: session %s has a corrupt timer %q", ErrValidation, s.ID, id)
		}
	}
	return nil
}

// SessionView is the read model returned by get_state.
type SessionView struct {
	SessionID       string      `json:"session_id"`
	RecipeTitle     string      `json:"recipe_title"`
	Recipe          *Recipe     `json:"recipe"`
	CurrentStep     int         `json:"current_step"`
	TotalSteps      int         `json:"total_steps"`
	CurrentStepData Step        `json:"current_step_data"`
	IsPaused        bool        `json:"is_paused"`
	Timers          []TimerView `json:"timers"`
	ActiveTimers    []TimerView `json:"active_timers"`
	Notes           []Note      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// View renders the session as of now.
func (s *Session) View(now time.Time) SessionView {
	return SessionView{
		SessionID:       s.ID,
		RecipeTitle:     s.Recipe.Title,
		Recipe:          s.Recipe.Clone(),
		CurrentStep:     s.CurrentStep,
		TotalSteps:      s.TotalSteps(),
		CurrentStepData: s.Current(),
		IsPaused:        s.Paused,
		Timers:          s.AllTimers(now),
		ActiveTimers:    s.ActiveTimers(now),
		Notes:           append([]Note{}, s.Notes...),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
