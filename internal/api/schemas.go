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

// SchemaHandler serves shift-schema CRUD
type SchemaHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewSchemaHandler creates a SchemaHandler
func NewSchemaHandler(store storage.Store, logger zerolog.Logger) *SchemaHandler {
	return &SchemaHandler{
		store:  store,
		logger: logger.With().Str("component", "schema_handler").Logger(),
	}
}

type createSchemaRequest struct {
	Name string            `json:"name"`
	Type types.SchemaType  `json:"type"`
	Days []types.SchemaDay `json:"days"`
}

func validBlocks(days []types.SchemaDay) bool {
	for _, day := range days {
		if day.DayIndex < 0 {
			return false
		}
		for _, block := range day.Blocks {
			if block.StartMinutes < 0 || block.EndMinutes > 1440 || block.StartMinutes >= block.EndMinutes {
				return false
			}
		}
	}
	return true
}

// Create handles POST /api/schemas
func (h *SchemaHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req createSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || len(req.Days) == 0 {
		respondError(w, http.StatusBadRequest, "missing required fields or days")
		return
	}
	if !validBlocks(req.Days) {
		respondError(w, http.StatusBadRequest, "invalid block intervals")
		return
	}

	schema := types.Schema{
		SchemaID:  uuid.NewString(),
		Name:      req.Name,
		Type:      req.Type,
		CompanyID: claims.CompanyID,
		CreatorID: claims.Subject,
		Days:      req.Days,
	}
	if err := h.store.CreateSchema(r.Context(), schema); err != nil {
		h.logger.Error().Err(err).Msg("failed to create schema")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusCreated, schema)
}

// Get handles GET /api/schemas/{schemaId}
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	schemaID := chi.URLParam(r, "schemaId")

	schema, err := h.store.GetSchema(r.Context(), schemaID, nil)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "schema not found")
			return
		}
		h.logger.Error().Err(err).Str("schema_id", schemaID).Msg("failed to get schema")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	// Tenants only ever see their own schemas
	if schema.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "schema not found")
		return
	}
	respondJSON(w, http.StatusOK, schema)
}

// List handles GET /api/schemas
func (h *SchemaHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	schemas, err := h.store.ListSchemas(r.Context(), claims.CompanyID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list schemas")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if schemas == nil {
		schemas = []types.Schema{}
	}
	respondJSON(w, http.StatusOK, schemas)
}

// Delete handles DELETE /api/schemas/{schemaId}
func (h *SchemaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	schemaID := chi.URLParam(r, "schemaId")

	schema, err := h.store.GetSchema(r.Context(), schemaID, nil)
	if err != nil || schema.CompanyID != claims.CompanyID {
		respondError(w, http.StatusNotFound, "schema not found")
		return
	}

	if err := h.store.DeleteSchema(r.Context(), schemaID); err != nil {
		h.logger.Error().Err(err).Str("schema_id", schemaID).Msg("failed to delete schema")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
