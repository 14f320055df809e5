package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/calldeskhq/backend/internal/types"
	"github.com/rs/zerolog"
)

// ErrInvalidRange is returned for nonsensical date or day-index ranges
var ErrInvalidRange = errors.New("invalid range")

// Store is the read-side persistence port the engine depends on. All
// methods are tenant-scoped and treat [start, end] as inclusive bounds;
// callers normalize end to end-of-day before invoking a report.
type Store interface {
	ListCallsInRange(ctx context.Context, companyID string, start, end time.Time) ([]types.Call, error)
	GroupedCallSums(ctx context.Context, companyID string, start, end time.Time) ([]types.DailyCallSum, error)
	GroupedEventCounts(ctx context.Context, companyID string, start, end time.Time, eventType types.EventType) ([]types.DailyEventCount, error)
	EventTypeTotals(ctx context.Context, companyID string, start, end time.Time) (map[types.EventType]int, error)
	GetSchema(ctx context.Context, schemaID string, dayRange *types.DayIndexRange) (*types.Schema, error)
	GetGoal(ctx context.Context, goalID string) (*types.TemporalGoals, error)
}

// Service computes the dashboard reports. Every report is a synchronous,
// non-mutating read: a storage failure propagates unmodified, a report
// either fully succeeds or fails entirely.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates an analytics service over the given store
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
}

func validateRange(start, end time.Time) error {
	if start.After(end) {
		return ErrInvalidRange
	}
	return nil
}
