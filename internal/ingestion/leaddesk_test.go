package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLeadDeskClientGetCall(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"auth":        r.URL.Query().Get("auth"),
			"mod":         r.URL.Query().Get("mod"),
			"cmd":         r.URL.Query().Get("cmd"),
			"call_ref_id": r.URL.Query().Get("call_ref_id"),
		}
		json.NewEncoder(w).Encode(CallDetail{
			ID:        "ld-42",
			AgentID:   "agent-7",
			Number:    "+4915112345678",
			TalkTime:  "245",
			TalkStart: "2026-03-10 09:15:00",
			TalkEnd:   "2026-03-10 09:19:05",
		})
	}))
	defer server.Close()

	client := NewLeadDeskClient(server.URL, "token-abc", 5*time.Second)

	detail, err := client.GetCall(context.Background(), "ld-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["auth"] != "token-abc" {
		t.Errorf("expected auth token-abc, got %s", gotQuery["auth"])
	}
	if gotQuery["mod"] != "call" || gotQuery["cmd"] != "get" {
		t.Errorf("unexpected query: %+v", gotQuery)
	}
	if gotQuery["call_ref_id"] != "ld-42" {
		t.Errorf("expected call_ref_id ld-42, got %s", gotQuery["call_ref_id"])
	}

	if detail.ID != "ld-42" || detail.AgentID != "agent-7" {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestLeadDeskClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "auth failed", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewLeadDeskClient(server.URL, "bad-token", 5*time.Second)

	if _, err := client.GetCall(context.Background(), "ld-42"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestLeadDeskClientInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewLeadDeskClient(server.URL, "token", 5*time.Second)

	if _, err := client.GetCall(context.Background(), "ld-42"); err == nil {
		t.Error("expected decode error")
	}
}
