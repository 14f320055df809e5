package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/calldeskhq/backend/internal/storage"
	"github.com/calldeskhq/backend/internal/types"
)

// BlockPerformancePoint is one (day, block) accumulator from the unfiltered
// block report. TalkTime is rounded to the nearest whole minute.
type BlockPerformancePoint struct {
	StartMinutes int     `json:"blockStartTimeMinutesFromMidnight"`
	EndMinutes   int     `json:"blockEndTimeMinutesFromMidnight"`
	TalkTime     float64 `json:"talkTime"`
	Seeds        int     `json:"seeds"`
	Sales        int     `json:"sales"`
}

// FilteredBlockPerformancePoint carries schema context for the day-filtered
// block report. TalkTime is rounded to two decimal places.
type FilteredBlockPerformancePoint struct {
	DayIndex     int     `json:"dayIndex"`
	StartMinutes int     `json:"blockStartTimeMinutesFromMidnight"`
	EndMinutes   int     `json:"blockEndTimeMinutesFromMidnight"`
	BlockName    string  `json:"blockName,omitempty"`
	TalkTime     float64 `json:"talkTime"`
	Seeds        int     `json:"seeds"`
	Sales        int     `json:"sales"`
}

type blockStat struct {
	dayIndex     int
	startMinutes int
	endMinutes   int
	name         string
	talkTime     float64
	seeds        int
	sales        int
}

// newBlockStats flattens schema days into one accumulator per (day, block),
// preserving schema order so that overlap attribution is deterministic:
// the earliest-listed matching block wins.
func newBlockStats(days []types.SchemaDay) []blockStat {
	var stats []blockStat
	for _, day := range days {
		for _, block := range day.Blocks {
			stats = append(stats, blockStat{
				dayIndex:     day.DayIndex,
				startMinutes: block.StartMinutes,
				endMinutes:   block.EndMinutes,
				name:         block.Name,
			})
		}
	}
	return stats
}

// accumulate attributes each call to the first block matching its day index
// and minute of day. Calls matching no block are silently dropped.
func accumulate(stats []blockStat, calls []types.Call, dayIndexOf func(time.Time) int) {
	for _, call := range calls {
		dayIndex := dayIndexOf(call.StartAt)
		minute := MinutesFromMidnight(call.StartAt)

		for i := range stats {
			b := &stats[i]
			if b.dayIndex != dayIndex || minute < b.startMinutes || minute >= b.endMinutes {
				continue
			}
			b.talkTime += float64(call.DurationSeconds) / 60.0
			for _, event := range call.Events {
				switch event.Type {
				case types.EventSeed:
					b.seeds++
				case types.EventSale:
					b.sales++
				}
			}
			break
		}
	}
}

// BlockPerformance maps the range's calls onto every block defined by the
// schema. The day offset is derived from the absolute distance to start,
// preserving the legacy report's sign-masking behavior.
func (s *Service) BlockPerformance(ctx context.Context, companyID string, start, end time.Time, schemaID string) ([]BlockPerformancePoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	schema, err := s.store.GetSchema(ctx, schemaID, nil)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schemaID, err)
	}

	calls, err := s.store.ListCallsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	stats := newBlockStats(schema.Days)
	accumulate(stats, calls, func(t time.Time) int { return AbsoluteDayIndex(t, start) })

	points := make([]BlockPerformancePoint, 0, len(stats))
	for _, b := range stats {
		points = append(points, BlockPerformancePoint{
			StartMinutes: b.startMinutes,
			EndMinutes:   b.endMinutes,
			TalkTime:     math.Round(b.talkTime),
			Seeds:        b.seeds,
			Sales:        b.sales,
		})
	}
	return points, nil
}

// BlockPerformanceFiltered restricts the block report to an inclusive
// day-of-cycle sub-range of the schema. Fails with not found when the
// schema has no days in that range.
func (s *Service) BlockPerformanceFiltered(ctx context.Context, companyID string, start, end time.Time, schemaID string, fromDayIndex, toDayIndex int) ([]FilteredBlockPerformancePoint, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if fromDayIndex > toDayIndex {
		return nil, fmt.Errorf("fromDayIndex %d > toDayIndex %d: %w", fromDayIndex, toDayIndex, ErrInvalidRange)
	}

	schema, err := s.store.GetSchema(ctx, schemaID, &types.DayIndexRange{From: fromDayIndex, To: toDayIndex})
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schemaID, err)
	}
	if len(schema.Days) == 0 {
		return nil, fmt.Errorf("schema %s has no days in [%d, %d]: %w", schemaID, fromDayIndex, toDayIndex, storage.ErrNotFound)
	}

	calls, err := s.store.ListCallsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	stats := newBlockStats(schema.Days)
	accumulate(stats, calls, func(t time.Time) int {
		dayIndex := RelativeDayIndex(t, start)
		if dayIndex < fromDayIndex || dayIndex > toDayIndex {
			return -1 // matches no block
		}
		return dayIndex
	})

	points := make([]FilteredBlockPerformancePoint, 0, len(stats))
	for _, b := range stats {
		points = append(points, FilteredBlockPerformancePoint{
			DayIndex:     b.dayIndex,
			StartMinutes: b.startMinutes,
			EndMinutes:   b.endMinutes,
			BlockName:    b.name,
			TalkTime:     math.Round(b.talkTime*100) / 100,
			Seeds:        b.seeds,
			Sales:        b.sales,
		})
	}
	return points, nil
}
