package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// ConsistencyPoint is one day's goal-consistency score. Day is the
// two-digit day of month; Score is in [0, 100].
type ConsistencyPoint struct {
	Day   string `json:"day"`
	Score int    `json:"score"`
}

type dailyStats struct {
	talkTime  float64
	calls     int
	seeds     int
	callbacks int
	leads     int
	sales     int
}

// ConsistencyHistory scores each day's realized metrics against the goal's
// targets. A metric contributes min(100, 100*realized/target) when its
// target is positive; zero or absent targets are excluded entirely. The
// day's score is the rounded mean of contributing metrics, or 0 when no
// metric has a positive target.
func (s *Service) ConsistencyHistory(ctx context.Context, goalID, companyID string, start, end time.Time) ([]ConsistencyPoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goalID, err)
	}

	calls, err := s.store.ListCallsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]*dailyStats)
	for _, call := range calls {
		day := DayKey(call.StartAt)
		stats, ok := byDay[day]
		if !ok {
			stats = &dailyStats{}
			byDay[day] = stats
		}
		stats.talkTime += float64(call.DurationSeconds) / 60.0
		stats.calls++
		for _, event := range call.Events {
			switch event.Type {
			case types.EventSeed:
				stats.seeds++
			case types.EventCallback:
				stats.callbacks++
			case types.EventLead:
				stats.leads++
			case types.EventSale:
				stats.sales++
			}
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]ConsistencyPoint, 0, len(days))
	for _, day := range days {
		stats := byDay[day]

		var scores []float64
		addScore := func(realized, target float64) {
			if target > 0 {
				scores = append(scores, math.Min(100, realized/target*100))
			}
		}

		addScore(stats.talkTime, goal.TalkTimeMinutes)
		addScore(float64(stats.seeds), float64(goal.Seeds))
		addScore(float64(stats.callbacks), float64(goal.Callbacks))
		addScore(float64(stats.leads), float64(goal.Leads))
		addScore(float64(stats.sales), float64(goal.Sales))
		addScore(float64(stats.calls), float64(goal.NumberOfCalls))

		score := 0
		if len(scores) > 0 {
			total := 0.0
			for _, v := range scores {
				total += v
			}
			score = int(math.Round(total / float64(len(scores))))
		}

		points = append(points, ConsistencyPoint{
			Day:   day.Format("02"),
			Score: score,
		})
	}
	return points, nil
}
