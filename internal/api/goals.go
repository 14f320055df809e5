package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GoalsHandler serves temporal-goal CRUD
type GoalsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewGoalsHandler creates a GoalsHandler
func NewGoalsHandler(store storage.Store, logger zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{
		store:  store,
		logger: logger.With().Str("component", "goals_handler").Logger(),
	}
}

// Create handles POST /api/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var goal types.TemporalGoals
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if goal.EndTime.Before(goal.StartTime) {
		respondError(w, http.StatusBadRequest, "endTime before startTime")
		return
	}

	goal.GoalID = uuid.NewString()
	goal.CompanyID = claims.CompanyID
	goal.CreatorID = claims.Subject

	if err := h.store.CreateGoal(r.Context(), goal); err != nil {
		h.logger.Error().Err(err).Msg("failed to create goal")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

// List handles GET /api/goals. With ?activeAt=YYYY-MM-DD only goals whose
// window covers that date are returned.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var goals []types.TemporalGoals
	var err error
	if activeAt := r.URL.Query().Get("activeAt"); activeAt != "" {
		at, parseErr := time.Parse("2006-01-02", activeAt)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid activeAt date, use YYYY-MM-DD")
			return
		}
		goals, err = h.store.ActiveGoals(r.Context(), claims.CompanyID, at)
	} else {
		goals, err = h.store.ListGoals(r.Context(), claims.CompanyID)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list goals")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if goals == nil {
		goals = []types.TemporalGoals{}
	}
	respondJSON(w, http.StatusOK, goals)
}

// Update handles PUT /api/goals/{goalId}
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	goalID := chi.URLParam(r, "goalId")

	existing, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil || existing.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}

	var goal types.TemporalGoals
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	goal.GoalID = goalID
	goal.CompanyID = existing.CompanyID
	goal.CreatorID = existing.CreatorID

	if err := h.store.UpdateGoal(r.Context(), goal); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		h.logger.Error().Err(err).Str("goal_id", goalID).Msg("failed to update goal")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/goals/{goalId}
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	goalID := chi.URLParam(r, "goalId")

	existing, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil || existing.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}

	if err := h.store.DeleteGoal(r.Context(), goalID); err != nil {
		h.logger.Error().Err(err).Str("goal_id", goalID).Msg("failed to delete goal")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
