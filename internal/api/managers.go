package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ManagerHandler serves manager-account administration. Routes using it
// are guarded to MAIN_ADMIN.
type ManagerHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewManagerHandler creates a ManagerHandler
func NewManagerHandler(store storage.Store, logger zerolog.Logger) *ManagerHandler {
	return &ManagerHandler{
		store:  store,
		logger: logger.With().Str("component", "manager_handler").Logger(),
	}
}

type createManagerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create handles POST /api/managers: creates the profile and its login
func (h *ManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req createManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.store.GetUserByEmail(r.Context(), email); err == nil {
		respondError(w, http.StatusConflict, "user already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		h.logger.Error().Err(err).Msg("failed to check existing user")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	manager := types.Manager{
		ManagerID: uuid.NewString(),
		Name:      req.Name,
		Email:     email,
		CompanyID: claims.CompanyID,
	}
	if err := h.store.CreateManager(r.Context(), manager); err != nil {
		h.logger.Error().Err(err).Msg("failed to create manager")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := types.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         types.RoleManager,
		CompanyID:    claims.CompanyID,
		ManagerID:    manager.ManagerID,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error().Err(err).Msg("failed to create manager user")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, manager)
}

// Get handles GET /api/managers/{managerId}
func (h *ManagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	managerID := chi.URLParam(r, "managerId")

	manager, err := h.store.GetManager(r.Context(), managerID)
	if err != nil || manager.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "manager not found")
		return
	}
	respondJSON(w, http.StatusOK, manager)
}

// List handles GET /api/managers
func (h *ManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	managers, err := h.store.ListManagers(r.Context(), claims.CompanyID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list managers")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if managers == nil {
		managers = []types.Manager{}
	}
	respondJSON(w, http.StatusOK, managers)
}

// Delete handles DELETE /api/managers/{managerId}: removes the profile and
// its login together
func (h *ManagerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	managerID := chi.URLParam(r, "managerId")

	manager, err := h.store.GetManager(r.Context(), managerID)
	if err != nil || manager.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "manager not found")
		return
	}

	if err := h.store.DeleteManager(r.Context(), managerID); err != nil {
		h.logger.Error().Err(err).Str("manager_id", managerID).Msg("failed to delete manager")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
