package storage

import (
	"context"
	"errors"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Store defines the storage interface. The read side feeds the analytics
// engine; the write side serves webhook ingestion and the management API.
type Store interface {
	// Analytics reads (all tenant-scoped, [start, end] inclusive)
	ListCallsInRange(ctx context.Context, companyID string, start, end time.Time) ([]types.Call, error)
	GroupedCallSums(ctx context.Context, companyID string, start, end time.Time) ([]types.DailyCallSum, error)
	GroupedEventCounts(ctx context.Context, companyID string, start, end time.Time, eventType types.EventType) ([]types.DailyEventCount, error)
	EventTypeTotals(ctx context.Context, companyID string, start, end time.Time) (map[types.EventType]int, error)
	GetSchema(ctx context.Context, schemaID string, dayRange *types.DayIndexRange) (*types.Schema, error)
	GetGoal(ctx context.Context, goalID string) (*types.TemporalGoals, error)

	// Ingestion writes
	SaveCall(ctx context.Context, call types.Call) error
	UpsertAgent(ctx context.Context, agent types.Agent) error
	UpsertCallee(ctx context.Context, phoneNumber string) (types.Callee, error)
	RecordFunnelEvent(ctx context.Context, event types.FunnelEvent) error

	// Schema CRUD
	CreateSchema(ctx context.Context, schema types.Schema) error
	ListSchemas(ctx context.Context, companyID string) ([]types.Schema, error)
	DeleteSchema(ctx context.Context, schemaID string) error

	// Goal CRUD
	CreateGoal(ctx context.Context, goal types.TemporalGoals) error
	UpdateGoal(ctx context.Context, goal types.TemporalGoals) error
	ListGoals(ctx context.Context, companyID string) ([]types.TemporalGoals, error)
	ActiveGoals(ctx context.Context, companyID string, at time.Time) ([]types.TemporalGoals, error)
	DeleteGoal(ctx context.Context, goalID string) error

	// Accounts
	CreateCompany(ctx context.Context, company types.Company) error
	GetCompanyByPublicKey(ctx context.Context, publicKey string) (*types.Company, error)
	CreateUser(ctx context.Context, user types.User) error
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	CreateManager(ctx context.Context, manager types.Manager) error
	GetManager(ctx context.Context, managerID string) (*types.Manager, error)
	ListManagers(ctx context.Context, companyID string) ([]types.Manager, error)
	DeleteManager(ctx context.Context, managerID string) error
	CreateTeam(ctx context.Context, team types.Team) error
	UpdateTeam(ctx context.Context, team types.Team) error
	DeleteTeam(ctx context.Context, teamID string) error
}

// filterDays returns a copy of days restricted to an inclusive day-index range
func filterDays(days []types.SchemaDay, dayRange *types.DayIndexRange) []types.SchemaDay {
	if dayRange == nil {
		return days
	}
	filtered := make([]types.SchemaDay, 0, len(days))
	for _, day := range days {
		if day.DayIndex >= dayRange.From && day.DayIndex <= dayRange.To {
			filtered = append(filtered, day)
		}
	}
	return filtered
}
