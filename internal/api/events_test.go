package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/rs/zerolog"
)

func TestEventCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewEventHandler(store, zerolog.Nop())

	body := map[string]interface{}{
		"callId":    "c1",
		"agentId":   "agent-7",
		"type":      "SEED",
		"timestamp": "2026-03-10T09:01:00Z",
	}
	req := authedRequest(t, http.MethodPost, "/api/events", body, "acme", types.RoleManager)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var event types.FunnelEvent
	decodeBody(t, rec, &event)
	if event.EventID == "" {
		t.Error("expected an event id")
	}
	if event.CompanyID != "acme" {
		t.Errorf("expected company acme, got %s", event.CompanyID)
	}

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	totals, err := store.EventTypeTotals(context.Background(), "acme", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals[types.EventSeed] != 1 {
		t.Errorf("expected 1 recorded seed, got %d", totals[types.EventSeed])
	}
}

func TestEventCreateDefaultsTimestamp(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewEventHandler(store, zerolog.Nop())

	body := map[string]interface{}{"callId": "c1", "agentId": "agent-7", "type": "SALE"}
	req := authedRequest(t, http.MethodPost, "/api/events", body, "acme", types.RoleManager)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var event types.FunnelEvent
	decodeBody(t, rec, &event)
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to default to now")
	}
}

func TestEventCreateValidation(t *testing.T) {
	handler := NewEventHandler(storage.NewMemoryStore(), zerolog.Nop())

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing callId", map[string]interface{}{"agentId": "a", "type": "SEED"}},
		{"missing agentId", map[string]interface{}{"callId": "c", "type": "SEED"}},
		{"unknown type", map[string]interface{}{"callId": "c", "agentId": "a", "type": "WON"}},
		{"empty type", map[string]interface{}{"callId": "c", "agentId": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, http.MethodPost, "/api/events", tt.body, "acme", types.RoleManager)
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}
