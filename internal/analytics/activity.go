package analytics

import (
	"context"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// DailyActivityPoint is one day of call activity. TalkTime is raw decimal
// minutes (not rounded).
type DailyActivityPoint struct {
	Date     string  `json:"date"`
	TalkTime float64 `json:"talkTime"`
	Calls    int     `json:"calls"`
	Seeds    int     `json:"seeds"`
}

// DailyActivity returns per-day talk time, call count and seed count,
// ascending by date. Days are driven by the call side: a day with seed
// events but no calls is not represented.
func (s *Service) DailyActivity(ctx context.Context, companyID string, start, end time.Time) ([]DailyActivityPoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	sums, err := s.store.GroupedCallSums(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	seedCounts, err := s.store.GroupedEventCounts(ctx, companyID, start, end, types.EventSeed)
	if err != nil {
		return nil, err
	}

	seedsByDay := make(map[string]int, len(seedCounts))
	for _, row := range seedCounts {
		seedsByDay[row.Date.Format("2006-01-02")] = row.Count
	}

	points := make([]DailyActivityPoint, 0, len(sums))
	for _, sum := range sums {
		date := sum.Date.Format("2006-01-02")
		points = append(points, DailyActivityPoint{
			Date:     date,
			TalkTime: float64(sum.DurationSeconds) / 60.0,
			Calls:    sum.Calls,
			Seeds:    seedsByDay[date],
		})
	}
	return points, nil
}
