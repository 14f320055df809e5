package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

func TestIntensityLevel(t *testing.T) {
	tests := []struct {
		name            string
		value, min, max float64
		want            int
	}{
		{"flat metric", 7, 7, 7, 0},
		{"minimum", 0, 0, 100, 0},
		{"maximum clamps to 4", 100, 0, 100, 4},
		{"just below a boundary", 19.9, 0, 100, 0},
		{"on a boundary", 20, 0, 100, 1},
		{"upper mid", 75, 0, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intensityLevel(tt.value, tt.min, tt.max); got != tt.want {
				t.Errorf("expected level %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSeedTimelineHeatmap(t *testing.T) {
	start := day(t, "2026-03-10")
	calls := []types.Call{
		// Quiet day: 10 minutes, no seeds
		{CallID: "1", StartAt: start.Add(9 * time.Hour), DurationSeconds: 600},
		// Busy day: 60 minutes, 4 seeds
		{CallID: "2", StartAt: start.Add(33 * time.Hour), DurationSeconds: 1800, Events: []types.FunnelEvent{
			seedEvent("2a"), seedEvent("2b"),
		}},
		{CallID: "3", StartAt: start.Add(34 * time.Hour), DurationSeconds: 1800, Events: []types.FunnelEvent{
			seedEvent("3a"), seedEvent("3b"),
		}},
	}
	svc := newTestService(&fakeStore{calls: calls})

	points, err := svc.SeedTimelineHeatmap(context.Background(), "c1", start, start.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 days, got %d", len(points))
	}

	quiet := points[0]
	if quiet.Date != "2026-03-10" {
		t.Errorf("expected date 2026-03-10, got %s", quiet.Date)
	}
	if quiet.Intensity != 0 {
		t.Errorf("expected intensity 0 on the minimum day, got %d", quiet.Intensity)
	}
	if quiet.Seeds != 0 || quiet.TalkTime != 10 {
		t.Errorf("unexpected quiet day: %+v", quiet)
	}

	busy := points[1]
	if busy.Intensity != 4 {
		t.Errorf("expected intensity 4 on the maximum day, got %d", busy.Intensity)
	}
	if busy.Seeds != 4 || busy.TalkTime != 60 {
		t.Errorf("unexpected busy day: %+v", busy)
	}
}

func TestSeedTimelineHeatmapSingleDay(t *testing.T) {
	start := day(t, "2026-03-10")
	calls := []types.Call{
		{CallID: "1", StartAt: start.Add(9 * time.Hour), DurationSeconds: 600, Events: []types.FunnelEvent{seedEvent("1")}},
	}
	svc := newTestService(&fakeStore{calls: calls})

	points, err := svc.SeedTimelineHeatmap(context.Background(), "c1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One day means min == max for both metrics, so intensity is flat
	if len(points) != 1 {
		t.Fatalf("expected 1 day, got %d", len(points))
	}
	if points[0].Intensity != 0 {
		t.Errorf("expected intensity 0, got %d", points[0].Intensity)
	}
}

func TestSeedTimelineHeatmapEmpty(t *testing.T) {
	start := day(t, "2026-03-10")
	svc := newTestService(&fakeStore{})

	points, err := svc.SeedTimelineHeatmap(context.Background(), "c1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}
