package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

func TestConsistencyHistory(t *testing.T) {
	start := day(t, "2026-03-10")
	goal := &types.TemporalGoals{
		GoalID:          "g1",
		CompanyID:       "c1",
		TalkTimeMinutes: 60,
		Seeds:           4,
		NumberOfCalls:   2,
	}
	calls := []types.Call{
		// Day 10: 30 talk minutes, 2 seeds, 2 calls -> (50 + 50 + 100) / 3 = 67
		{CallID: "1", StartAt: start.Add(9 * time.Hour), DurationSeconds: 900, Events: []types.FunnelEvent{seedEvent("1")}},
		{CallID: "2", StartAt: start.Add(10 * time.Hour), DurationSeconds: 900, Events: []types.FunnelEvent{seedEvent("2")}},
		// Day 11: overachieves every target, each metric caps at 100
		{CallID: "3", StartAt: start.Add(33 * time.Hour), DurationSeconds: 7200, Events: []types.FunnelEvent{
			seedEvent("3a"), seedEvent("3b"), seedEvent("3c"), seedEvent("3d"), seedEvent("3e"),
		}},
		{CallID: "4", StartAt: start.Add(34 * time.Hour), DurationSeconds: 600},
	}
	svc := newTestService(&fakeStore{goal: goal, calls: calls})

	points, err := svc.ConsistencyHistory(context.Background(), "g1", "c1", start, start.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 days, got %d", len(points))
	}

	if points[0].Day != "10" {
		t.Errorf("expected day label 10, got %s", points[0].Day)
	}
	if points[0].Score != 67 {
		t.Errorf("expected score 67, got %d", points[0].Score)
	}

	if points[1].Day != "11" {
		t.Errorf("expected day label 11, got %s", points[1].Day)
	}
	if points[1].Score != 100 {
		t.Errorf("expected capped score 100, got %d", points[1].Score)
	}
}

func TestConsistencyHistoryIgnoresZeroTargets(t *testing.T) {
	start := day(t, "2026-03-10")
	// Only the call-count target is set; zero targets must not dilute the mean
	goal := &types.TemporalGoals{GoalID: "g1", CompanyID: "c1", NumberOfCalls: 4}
	calls := []types.Call{
		{CallID: "1", StartAt: start.Add(9 * time.Hour), DurationSeconds: 600, Events: []types.FunnelEvent{seedEvent("1")}},
	}
	svc := newTestService(&fakeStore{goal: goal, calls: calls})

	points, err := svc.ConsistencyHistory(context.Background(), "g1", "c1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("expected 1 day, got %d", len(points))
	}
	// 1 of 4 calls, the only contributing metric
	if points[0].Score != 25 {
		t.Errorf("expected score 25, got %d", points[0].Score)
	}
}

func TestConsistencyHistoryNoPositiveTargets(t *testing.T) {
	start := day(t, "2026-03-10")
	goal := &types.TemporalGoals{GoalID: "g1", CompanyID: "c1"}
	calls := []types.Call{
		{CallID: "1", StartAt: start.Add(9 * time.Hour), DurationSeconds: 600},
	}
	svc := newTestService(&fakeStore{goal: goal, calls: calls})

	points, err := svc.ConsistencyHistory(context.Background(), "g1", "c1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 1 || points[0].Score != 0 {
		t.Errorf("expected a single zero score, got %+v", points)
	}
}
