package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TeamHandler serves team CRUD
type TeamHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewTeamHandler creates a TeamHandler
func NewTeamHandler(store storage.Store, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		store:  store,
		logger: logger.With().Str("component", "team_handler").Logger(),
	}
}

type teamRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "team name is required")
		return
	}

	team := types.Team{
		TeamID:    uuid.NewString(),
		Name:      req.Name,
		CompanyID: claims.CompanyID,
	}
	if err := h.store.CreateTeam(r.Context(), team); err != nil {
		h.logger.Error().Err(err).Msg("failed to create team")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

// Update handles PUT /api/teams/{teamId}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	teamID := chi.URLParam(r, "teamId")

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "team name is required")
		return
	}

	team := types.Team{
		TeamID:    teamID,
		Name:      req.Name,
		CompanyID: claims.CompanyID,
	}
	if err := h.store.UpdateTeam(r.Context(), team); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "team not found")
			return
		}
		h.logger.Error().Err(err).Str("team_id", teamID).Msg("failed to update team")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// Delete handles DELETE /api/teams/{teamId}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamId")

	if err := h.store.DeleteTeam(r.Context(), teamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "team not found")
			return
		}
		h.logger.Error().Err(err).Str("team_id", teamID).Msg("failed to delete team")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
