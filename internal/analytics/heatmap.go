package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// HeatmapPoint is one day of the seed timeline heatmap. Intensity is a
// discrete level in [0, 4]; TalkTime is rounded to whole minutes.
type HeatmapPoint struct {
	Date      string `json:"date"`
	Intensity int    `json:"intensity"`
	Seeds     int    `json:"seeds"`
	TalkTime  int    `json:"talkTime"`
}

// intensityLevel min-max scales a value into one of 5 equal-width buckets.
// A flat metric (max == min) always yields level 0; the clamp guards
// value == max landing in bucket 5.
func intensityLevel(value, min, max float64) int {
	if max == min {
		return 0
	}
	step := (max - min) / 5
	level := int(math.Floor((value - min) / step))
	if level > 4 {
		level = 4
	}
	return level
}

// SeedTimelineHeatmap scales each day's talk time and seed count into
// independent 0-4 levels and averages them into a single heat value.
// Every day with at least one call appears, even with zero seeds; an empty
// range returns an empty sequence.
func (s *Service) SeedTimelineHeatmap(ctx context.Context, companyID string, start, end time.Time) ([]HeatmapPoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	calls, err := s.store.ListCallsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return []HeatmapPoint{}, nil
	}

	type dayMetrics struct {
		talkTime float64
		seeds    int
	}
	byDay := make(map[time.Time]*dayMetrics)
	for _, call := range calls {
		day := DayKey(call.StartAt)
		m, ok := byDay[day]
		if !ok {
			m = &dayMetrics{}
			byDay[day] = m
		}
		m.talkTime += float64(call.DurationSeconds) / 60.0
		for _, event := range call.Events {
			if event.Type == types.EventSeed {
				m.seeds++
			}
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	minTalk, maxTalk := math.Inf(1), math.Inf(-1)
	minSeeds, maxSeeds := math.Inf(1), math.Inf(-1)
	for _, day := range days {
		m := byDay[day]
		minTalk = math.Min(minTalk, m.talkTime)
		maxTalk = math.Max(maxTalk, m.talkTime)
		minSeeds = math.Min(minSeeds, float64(m.seeds))
		maxSeeds = math.Max(maxSeeds, float64(m.seeds))
	}

	points := make([]HeatmapPoint, 0, len(days))
	for _, day := range days {
		m := byDay[day]
		talkLevel := intensityLevel(m.talkTime, minTalk, maxTalk)
		seedLevel := intensityLevel(float64(m.seeds), minSeeds, maxSeeds)

		points = append(points, HeatmapPoint{
			Date:      day.Format("2006-01-02"),
			Intensity: int(math.Round(float64(talkLevel+seedLevel) / 2)),
			Seeds:     m.seeds,
			TalkTime:  int(math.Round(m.talkTime)),
		})
	}
	return points, nil
}
