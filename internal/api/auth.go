package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/metrics"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves registration and login
type AuthHandler struct {
	store         storage.Store
	authenticator *auth.Authenticator
	logger        zerolog.Logger
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(store storage.Store, authenticator *auth.Authenticator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:         store,
		authenticator: authenticator,
		logger:        logger.With().Str("component", "auth_handler").Logger(),
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type registerRequest struct {
	CompanyName string `json:"companyName"`
	AdminEmail  string `json:"adminEmail"`
	AdminName   string `json:"adminName"`
	Password    string `json:"password"`
}

// Register handles POST /api/auth/register: creates the company, the admin
// manager profile and its login in one go
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdminEmail == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.AdminEmail))

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

	company := types.Company{
		CompanyID: uuid.NewString(),
		Name:      req.CompanyName,
	}
	if err := h.store.CreateCompany(r.Context(), company); err != nil {
		h.logger.Error().Err(err).Msg("failed to create company")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	manager := types.Manager{
		ManagerID: uuid.NewString(),
		Name:      req.AdminName,
		Email:     email,
		CompanyID: company.CompanyID,
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
		Role:         types.RoleMainAdmin,
		CompanyID:    company.CompanyID,
		ManagerID:    manager.ManagerID,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error().Err(err).Msg("failed to create user")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"companyId": company.CompanyID,
		"userId":    user.UserID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		m.RecordLogin(false)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		m.RecordLogin(false)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.authenticator.IssueToken(*user)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue token")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	m.RecordLogin(true)
	respondJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  string(user.Role),
	})
}
