package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/rs/zerolog"
)

type fakeDialer struct {
	detail *CallDetail
	err    error
}

func (f *fakeDialer) GetCall(ctx context.Context, callRefID string) (*CallDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func testDetail() *CallDetail {
	return &CallDetail{
		ID:            "ld-42",
		AgentID:       "agent-7",
		AgentUsername: "jonas",
		AgentGroupID:  "team-1",
		Number:        "+4915112345678",
		TalkTime:      "245",
		TalkStart:     "2026-03-10 09:15:00",
		TalkEnd:       "2026-03-10 09:19:05",
		OrderIDs:      []int{1001},
	}
}

func webhookRequest(companyID, lastCallID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/leaddesk/webhook?last_call_id="+lastCallID, nil)
	if companyID != "" {
		ctx := context.WithValue(req.Context(), auth.CompanyContextKey, companyID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestHandleCall(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewWebhookHandler(store, &fakeDialer{detail: testDetail()}, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.HandleCall(rec, webhookRequest("acme", "ld-42"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("expected success status, got %s", resp["status"])
	}
	if resp["callId"] == "" {
		t.Error("expected callId in response")
	}

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	calls, err := store.ListCallsInRange(context.Background(), "acme", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 stored call, got %d", len(calls))
	}

	call := calls[0]
	if call.CompanyID != "acme" {
		t.Errorf("expected company acme, got %s", call.CompanyID)
	}
	if call.AgentID != "agent-7" || call.TeamID != "team-1" {
		t.Errorf("unexpected agent attribution: %+v", call)
	}
	if call.ExternalRef != "ld-42" {
		t.Errorf("expected external ref ld-42, got %s", call.ExternalRef)
	}
	if call.DurationSeconds != 245 {
		t.Errorf("expected duration 245, got %d", call.DurationSeconds)
	}
	if !call.IsEffective {
		t.Error("expected call with orders to be effective")
	}
	if call.StartAt != time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC) {
		t.Errorf("unexpected start time: %v", call.StartAt)
	}
}

func TestHandleCallTracksCalleeAttempts(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewWebhookHandler(store, &fakeDialer{detail: testDetail()}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.HandleCall(rec, webhookRequest("acme", "ld-42"))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected status 200, got %d", i, rec.Code)
		}
	}

	callee, err := store.UpsertCallee(context.Background(), "+4915112345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Three webhook attempts plus this check
	if callee.TotalAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", callee.TotalAttempts)
	}
}

func TestHandleCallValidation(t *testing.T) {
	tests := []struct {
		name           string
		companyID      string
		lastCallID     string
		dialer         Dialer
		expectedStatus int
	}{
		{
			name:           "missing auth context",
			companyID:      "",
			lastCallID:     "ld-42",
			dialer:         &fakeDialer{detail: testDetail()},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing last_call_id",
			companyID:      "acme",
			lastCallID:     "",
			dialer:         &fakeDialer{detail: testDetail()},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "dialer unavailable",
			companyID:      "acme",
			lastCallID:     "ld-42",
			dialer:         &fakeDialer{err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewWebhookHandler(storage.NewMemoryStore(), tt.dialer, zerolog.Nop())
			rec := httptest.NewRecorder()

			handler.HandleCall(rec, webhookRequest(tt.companyID, tt.lastCallID))

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestHandleCallRejectsMalformedDetail(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CallDetail)
	}{
		{"bad talk_start", func(d *CallDetail) { d.TalkStart = "10.03.2026 09:15" }},
		{"bad talk_end", func(d *CallDetail) { d.TalkEnd = "" }},
		{"bad talk_time", func(d *CallDetail) { d.TalkTime = "four minutes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := testDetail()
			tt.mutate(detail)
			handler := NewWebhookHandler(storage.NewMemoryStore(), &fakeDialer{detail: detail}, zerolog.Nop())
			rec := httptest.NewRecorder()

			handler.HandleCall(rec, webhookRequest("acme", "ld-42"))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", rec.Code)
			}
		})
	}
}
