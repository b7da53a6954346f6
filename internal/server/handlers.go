package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
)

type createSessionRequest struct {
	Recipe   *domain.Recipe `json:"recipe"`
	RecipeID string         `json:"recipe_id"`
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	RecipeTitle string `json:"recipe_title"`
	TotalSteps  int    `json:"total_steps"`
}

type sessionSummary struct {
	SessionID    string    `json:"session_id"`
	RecipeTitle  string    `json:"recipe_title"`
	CurrentStep  int       `json:"current_step"`
	TotalSteps   int       `json:"total_steps"`
	IsPaused     bool      `json:"is_paused"`
	ActiveTimers int       `json:"active_timers"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type listSessionsResponse struct {
	Sessions []sessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

type stepRequest struct {
	Action string `json:"action"`
}

type jumpRequest struct {
	Step int `json:"step"`
}

type stepResponse struct {
	Message string `json:"message"`
	engine.StepResult
}

type addTimerRequest struct {
	Label    string `json:"label"`
	Duration string `json:"duration"`
}

type timerResponse struct {
	TimerID          string `json:"timer_id"`
	Label            string `json:"label"`
	Status           string `json:"status"`
	SecondsTotal     int    `json:"seconds_total"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

type noteRequest struct {
	Text string `json:"text"`
}

type commandRequest struct {
	Intent domain.Intent `json:"intent"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Intent domain.Intent `json:"intent"`
	engine.CommandResult
}

type listRecipesResponse struct {
	Recipes []domain.RecipeSummary `json:"recipes"`
	Count   int                    `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(s.manager.List(r.Context())),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe := req.Recipe
	if recipe == nil && req.RecipeID != "" {
		if s.recipes == nil {
			s.writeError(w, r, fmt.Errorf("recipe catalog: %w", errNotConfigured))
			return
		}
		var err error
		if recipe, err = s.recipes.Get(r.Context(), req.RecipeID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	session, err := s.manager.Create(r.Context(), recipe)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:   session.ID,
		RecipeTitle: session.Recipe.Title,
		TotalSteps:  session.TotalSteps(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	now := s.manager.Now()
	sessions := s.manager.List(r.Context())
	out := listSessionsResponse{Sessions: make([]sessionSummary, 0, len(sessions))}
	for _, sess := range sessions {
		out.Sessions = append(out.Sessions, sessionSummary{
			SessionID:    sess.ID,
			RecipeTitle:  sess.Recipe.Title,
			CurrentStep:  sess.CurrentStep,
			TotalSteps:   sess.TotalSteps(),
			IsPaused:     sess.Paused,
			ActiveTimers: len(sess.ActiveTimers(now)),
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
		})
	}
	out.Count = len(out.Sessions)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.manager.State(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	action, err := domain.ParseNavAction(req.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.manager.Step(r.Context(), r.PathValue("id"), action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStepResponse(res))
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.manager.JumpTo(r.Context(), r.PathValue("id"), req.Step)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStepResponse(res))
}

func newStepResponse(res engine.StepResult) stepResponse {
	return stepResponse{
		Message:    fmt.Sprintf("Step %d of %d", res.CurrentStep, res.TotalSteps),
		StepResult: res,
	}
}

func (s *Server) handleAddTimer(w http.ResponseWriter, r *http.Request) {
	var req addTimerRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.manager.AddTimer(r.Context(), r.PathValue("id"), req.Label, req.Duration)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTimerResponse(t))
}

func (s *Server) handleTimerAction(w http.ResponseWriter, r *http.Request) {
	id, timerID := r.PathValue("id"), r.PathValue("timer")

	var (
		t   domain.TimerView
		err error
	)
	switch strings.ToLower(r.PathValue("action")) {
	case "pause":
		t, err = s.manager.PauseTimer(r.Context(), id, timerID)
	case "resume":
		t, err = s.manager.ResumeTimer(r.Context(), id, timerID)
	case "cancel":
		t, err = s.manager.CancelTimer(r.Context(), id, timerID)
	default:
		err = fmt.Errorf("%w: unknown timer action %q", domain.ErrValidation, r.PathValue("action"))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTimerResponse(t))
}

func newTimerResponse(t domain.TimerView) timerResponse {
	return timerResponse{
		TimerID:          t.ID,
		Label:            t.Label,
		Status:           t.Status,
		SecondsTotal:     t.SecondsTotal,
		SecondsRemaining: t.SecondsRemaining,
	}
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	note, err := s.manager.AddNote(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := req.Intent.Command()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.manager.ApplyCommand(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.classifier == nil {
		s.writeError(w, r, fmt.Errorf("classifier: %w", errNotConfigured))
		return
	}
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	view, err := s.manager.State(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := s.classifier.Classify(r.Context(), req.Query, view)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.manager.ApplyCommand(r.Context(), id, cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Intent: domain.IntentOf(cmd), CommandResult: res})
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	if s.recipes == nil {
		s.writeError(w, r, fmt.Errorf("recipe catalog: %w", errNotConfigured))
		return
	}
	list, err := s.recipes.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.RecipeSummary{}
	}
	writeJSON(w, http.StatusOK, listRecipesResponse{Recipes: list, Count: len(list)})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	if s.recipes == nil {
		s.writeError(w, r, fmt.Errorf("recipe catalog: %w", errNotConfigured))
		return
	}
	recipe, err := s.recipes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	saver, ok := s.recipes.(RecipeSaver)
	if !ok {
		s.writeError(w, r, fmt.Errorf("writable recipe catalog: %w", errNotConfigured))
		return
	}
	var recipe domain.Recipe
	if err := decode(w, r, &recipe); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := saver.Save(r.Context(), &recipe)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved.Summary())
}
