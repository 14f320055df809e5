package ingestion

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/metrics"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookHandler ingests completed calls announced by the dialer. The
// webhook only carries the call reference; full details are fetched from
// the dialer API before the immutable call record is stored.
type WebhookHandler struct {
	store  storage.Store
	dialer Dialer
	logger zerolog.Logger
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(store storage.Store, dialer Dialer, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		store:  store,
		dialer: dialer,
		logger: logger.With().Str("component", "webhook").Logger(),
	}
}

// HandleCall receives the dialer's call-completed ping
// GET /api/leaddesk/webhook?last_call_id=...
func (h *WebhookHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	companyID, ok := auth.CompanyFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lastCallID := r.URL.Query().Get("last_call_id")
	if lastCallID == "" {
		http.Error(w, "Missing last_call_id", http.StatusBadRequest)
		return
	}

	call, err := h.ingest(r, companyID, lastCallID)
	if err != nil {
		h.logger.Error().Err(err).
			Str("company_id", companyID).
			Str("last_call_id", lastCallID).
			Msg("failed to ingest call")
		m.RecordIngestError()
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	m.RecordCallIngested()
	h.logger.Debug().
		Str("call_id", call.CallID).
		Str("agent_id", call.AgentID).
		Int("duration_seconds", call.DurationSeconds).
		Msg("call ingested")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
		"callId": call.CallID,
	})
}

// ingest fetches the call detail and syncs callee, agent and call records
func (h *WebhookHandler) ingest(r *http.Request, companyID, lastCallID string) (*types.Call, error) {
	ctx := r.Context()

	detail, err := h.dialer.GetCall(ctx, lastCallID)
	if err != nil {
		return nil, err
	}

	startAt, err := time.Parse(leadDeskTimeFormat, detail.TalkStart)
	if err != nil {
		return nil, fmt.Errorf("invalid talk_start %q: %w", detail.TalkStart, err)
	}
	endAt, err := time.Parse(leadDeskTimeFormat, detail.TalkEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid talk_end %q: %w", detail.TalkEnd, err)
	}
	duration, err := strconv.Atoi(detail.TalkTime)
	if err != nil {
		return nil, fmt.Errorf("invalid talk_time %q: %w", detail.TalkTime, err)
	}

	callee, err := h.store.UpsertCallee(ctx, detail.Number)
	if err != nil {
		return nil, err
	}

	agent := types.Agent{
		AgentID:   detail.AgentID,
		Name:      detail.AgentUsername,
		TeamID:    detail.AgentGroupID,
		CompanyID: companyID,
	}
	if err := h.store.UpsertAgent(ctx, agent); err != nil {
		return nil, err
	}

	call := types.Call{
		CallID:          uuid.NewString(),
		CompanyID:       companyID,
		AgentID:         agent.AgentID,
		TeamID:          agent.TeamID,
		CalleeID:        callee.PhoneNumber,
		ExternalRef:     detail.ID,
		StartAt:         startAt,
		EndAt:           endAt,
		DurationSeconds: duration,
		IsEffective:     len(detail.OrderIDs) > 0,
	}
	if err := h.store.SaveCall(ctx, call); err != nil {
		return nil, err
	}
	return &call, nil
}
