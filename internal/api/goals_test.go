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

func marchGoal(goalID, companyID string) types.TemporalGoals {
	return types.TemporalGoals{
		GoalID:          goalID,
		Name:            "March push",
		StartTime:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndTime:         time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TalkTimeMinutes: 120,
		Seeds:           10,
		CompanyID:       companyID,
		CreatorID:       "creator-1",
	}
}

func TestGoalsCreate(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewGoalsHandler(store, zerolog.Nop())

	body := map[string]interface{}{
		"name":            "March push",
		"startTime":       "2026-03-01T00:00:00Z",
		"endTime":         "2026-03-31T00:00:00Z",
		"talkTimeMinutes": 120,
		"seeds":           10,
	}
	req := authedRequest(t, http.MethodPost, "/api/goals", body, "acme", types.RoleManager)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var goal types.TemporalGoals
	decodeBody(t, rec, &goal)
	if goal.GoalID == "" {
		t.Error("expected a goal id")
	}
	if goal.CompanyID != "acme" || goal.CreatorID != "test-user" {
		t.Errorf("expected tenant and creator from claims, got %+v", goal)
	}
}

func TestGoalsCreateRejectsInvertedWindow(t *testing.T) {
	handler := NewGoalsHandler(storage.NewMemoryStore(), zerolog.Nop())

	body := map[string]interface{}{
		"name":      "broken",
		"startTime": "2026-03-31T00:00:00Z",
		"endTime":   "2026-03-01T00:00:00Z",
	}
	req := authedRequest(t, http.MethodPost, "/api/goals", body, "acme", types.RoleManager)
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestGoalsList(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewGoalsHandler(store, zerolog.Nop())

	april := marchGoal("g2", "acme")
	april.StartTime = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	april.EndTime = time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	for _, goal := range []types.TemporalGoals{
		marchGoal("g1", "acme"),
		april,
		marchGoal("x1", "other"),
	} {
		if err := store.CreateGoal(context.Background(), goal); err != nil {
			t.Fatalf("failed to create goal: %v", err)
		}
	}

	t.Run("all goals", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, "/api/goals", nil, "acme", types.RoleManager)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var goals []types.TemporalGoals
		decodeBody(t, rec, &goals)
		if len(goals) != 2 {
			t.Errorf("expected 2 goals, got %d", len(goals))
		}
	})

	t.Run("active at date", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, "/api/goals?activeAt=2026-03-15", nil, "acme", types.RoleManager)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var goals []types.TemporalGoals
		decodeBody(t, rec, &goals)
		if len(goals) != 1 || goals[0].GoalID != "g1" {
			t.Errorf("expected only g1 active, got %+v", goals)
		}
	})

	t.Run("bad activeAt", func(t *testing.T) {
		req := authedRequest(t, http.MethodGet, "/api/goals?activeAt=soon", nil, "acme", types.RoleManager)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestGoalsUpdate(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewGoalsHandler(store, zerolog.Nop())

	if err := store.CreateGoal(context.Background(), marchGoal("g1", "acme")); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	body := map[string]interface{}{
		"name":            "March push v2",
		"startTime":       "2026-03-01T00:00:00Z",
		"endTime":         "2026-03-31T00:00:00Z",
		"talkTimeMinutes": 90,
		"companyId":       "intruder",
		"creatorId":       "intruder",
	}
	req := authedRequest(t, http.MethodPut, "/api/goals/g1", body, "acme", types.RoleManager)
	req = withURLParam(req, "goalId", "g1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := store.GetGoal(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.TalkTimeMinutes != 90 {
		t.Errorf("expected talk time target 90, got %v", updated.TalkTimeMinutes)
	}
	// Identity fields must survive whatever the client sends
	if updated.CompanyID != "acme" || updated.CreatorID != "creator-1" {
		t.Errorf("identity fields overwritten: %+v", updated)
	}
}

func TestGoalsUpdateTenantIsolation(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewGoalsHandler(store, zerolog.Nop())

	if err := store.CreateGoal(context.Background(), marchGoal("g1", "acme")); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	req := authedRequest(t, http.MethodPut, "/api/goals/g1", map[string]interface{}{"name": "hijack"}, "other", types.RoleManager)
	req = withURLParam(req, "goalId", "g1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestGoalsDelete(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewGoalsHandler(store, zerolog.Nop())

	if err := store.CreateGoal(context.Background(), marchGoal("g1", "acme")); err != nil {
		t.Fatalf("failed to create goal: %v", err)
	}

	req := authedRequest(t, http.MethodDelete, "/api/goals/g1", nil, "acme", types.RoleManager)
	req = withURLParam(req, "goalId", "g1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if _, err := store.GetGoal(context.Background(), "g1"); err == nil {
		t.Error("expected goal to be deleted")
	}
}
