package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/metrics"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventHandler records funnel events
type EventHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewEventHandler creates an EventHandler
func NewEventHandler(store storage.Store, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		store:  store,
		logger: logger.With().Str("component", "event_handler").Logger(),
	}
}

type createEventRequest struct {
	CallID    string          `json:"callId"`
	AgentID   string          `json:"agentId"`
	Type      types.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := auth.CompanyFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CallID == "" || req.AgentID == "" {
		respondError(w, http.StatusBadRequest, "callId and agentId are required")
		return
	}
	switch req.Type {
	case types.EventSeed, types.EventCallback, types.EventLead, types.EventSale:
	default:
		respondError(w, http.StatusBadRequest, "invalid event type")
		return
	}

	event := types.FunnelEvent{
		EventID:   uuid.NewString(),
		CallID:    req.CallID,
		AgentID:   req.AgentID,
		CompanyID: companyID,
		Type:      req.Type,
		Timestamp: req.Timestamp,
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := h.store.RecordFunnelEvent(r.Context(), event); err != nil {
		h.logger.Error().Err(err).Str("call_id", req.CallID).Msg("failed to record funnel event")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	metrics.Get().RecordEventRecorded()

	respondJSON(w, http.StatusCreated, event)
}
