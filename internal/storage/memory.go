package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/calldeskhq/backend/internal/types"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs DYNAMO_MODE=none
// deployments and the analytics test suite.
type MemoryStore struct {
	mu        sync.RWMutex
	calls     map[string]types.Call
	events    []types.FunnelEvent
	agents    map[string]types.Agent
	callees   map[string]types.Callee
	schemas   map[string]types.Schema
	goals     map[string]types.TemporalGoals
	companies map[string]types.Company
	users     map[string]types.User
	managers  map[string]types.Manager
	teams     map[string]types.Team
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		calls:     make(map[string]types.Call),
		agents:    make(map[string]types.Agent),
		callees:   make(map[string]types.Callee),
		schemas:   make(map[string]types.Schema),
		goals:     make(map[string]types.TemporalGoals),
		companies: make(map[string]types.Company),
		users:     make(map[string]types.User),
		managers:  make(map[string]types.Manager),
		teams:     make(map[string]types.Team),
	}
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (s *MemoryStore) ListCallsInRange(_ context.Context, companyID string, start, end time.Time) ([]types.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var calls []types.Call
	for _, call := range s.calls {
		if call.CompanyID != companyID || !inRange(call.StartAt, start, end) {
			continue
		}
		call.Events = nil
		for _, event := range s.events {
			if event.CallID == call.CallID {
				call.Events = append(call.Events, event)
			}
		}
		calls = append(calls, call)
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].StartAt.Before(calls[j].StartAt) })
	return calls, nil
}

func (s *MemoryStore) GroupedCallSums(_ context.Context, companyID string, start, end time.Time) ([]types.DailyCallSum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[time.Time]*types.DailyCallSum)
	for _, call := range s.calls {
		if call.CompanyID != companyID || !inRange(call.StartAt, start, end) {
			continue
		}
		day := utcDay(call.StartAt)
		sum, ok := byDay[day]
		if !ok {
			sum = &types.DailyCallSum{Date: day}
			byDay[day] = sum
		}
		sum.DurationSeconds += int64(call.DurationSeconds)
		sum.Calls++
	}

	sums := make([]types.DailyCallSum, 0, len(byDay))
	for _, sum := range byDay {
		sums = append(sums, *sum)
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].Date.Before(sums[j].Date) })
	return sums, nil
}

func (s *MemoryStore) GroupedEventCounts(_ context.Context, companyID string, start, end time.Time, eventType types.EventType) ([]types.DailyEventCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[time.Time]int)
	for _, event := range s.events {
		if event.CompanyID != companyID || event.Type != eventType || !inRange(event.Timestamp, start, end) {
			continue
		}
		byDay[utcDay(event.Timestamp)]++
	}

	counts := make([]types.DailyEventCount, 0, len(byDay))
	for day, count := range byDay {
		counts = append(counts, types.DailyEventCount{Date: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Date.Before(counts[j].Date) })
	return counts, nil
}

func (s *MemoryStore) EventTypeTotals(_ context.Context, companyID string, start, end time.Time) (map[types.EventType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[types.EventType]int)
	for _, event := range s.events {
		if event.CompanyID != companyID || !inRange(event.Timestamp, start, end) {
			continue
		}
		totals[event.Type]++
	}
	return totals, nil
}

func (s *MemoryStore) GetSchema(_ context.Context, schemaID string, dayRange *types.DayIndexRange) (*types.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.schemas[schemaID]
	if !ok {
		return nil, ErrNotFound
	}
	schema.Days = filterDays(schema.Days, dayRange)
	return &schema, nil
}

func (s *MemoryStore) GetGoal(_ context.Context, goalID string) (*types.TemporalGoals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goal, ok := s.goals[goalID]
	if !ok {
		return nil, ErrNotFound
	}
	return &goal, nil
}

func (s *MemoryStore) SaveCall(_ context.Context, call types.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Nested events are persisted through RecordFunnelEvent
	call.Events = nil
	s.calls[call.CallID] = call
	return nil
}

func (s *MemoryStore) UpsertAgent(_ context.Context, agent types.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.AgentID] = agent
	return nil
}

func (s *MemoryStore) UpsertCallee(_ context.Context, phoneNumber string) (types.Callee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	callee := s.callees[phoneNumber]
	callee.PhoneNumber = phoneNumber
	callee.TotalAttempts++
	s.callees[phoneNumber] = callee
	return callee, nil
}

func (s *MemoryStore) RecordFunnelEvent(_ context.Context, event types.FunnelEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) CreateSchema(_ context.Context, schema types.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[schema.SchemaID] = schema
	return nil
}

func (s *MemoryStore) ListSchemas(_ context.Context, companyID string) ([]types.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var schemas []types.Schema
	for _, schema := range s.schemas {
		if schema.CompanyID == companyID {
			schemas = append(schemas, schema)
		}
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].SchemaID < schemas[j].SchemaID })
	return schemas, nil
}

func (s *MemoryStore) DeleteSchema(_ context.Context, schemaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemas[schemaID]; !ok {
		return ErrNotFound
	}
	delete(s.schemas, schemaID)
	return nil
}

func (s *MemoryStore) CreateGoal(_ context.Context, goal types.TemporalGoals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goal.GoalID] = goal
	return nil
}

func (s *MemoryStore) UpdateGoal(_ context.Context, goal types.TemporalGoals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[goal.GoalID]; !ok {
		return ErrNotFound
	}
	s.goals[goal.GoalID] = goal
	return nil
}

func (s *MemoryStore) ListGoals(_ context.Context, companyID string) ([]types.TemporalGoals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var goals []types.TemporalGoals
	for _, goal := range s.goals {
		if goal.CompanyID == companyID {
			goals = append(goals, goal)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].StartTime.After(goals[j].StartTime) })
	return goals, nil
}

func (s *MemoryStore) ActiveGoals(_ context.Context, companyID string, at time.Time) ([]types.TemporalGoals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var goals []types.TemporalGoals
	for _, goal := range s.goals {
		if goal.CompanyID == companyID && !goal.StartTime.After(at) && !goal.EndTime.Before(at) {
			goals = append(goals, goal)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].GoalID < goals[j].GoalID })
	return goals, nil
}

func (s *MemoryStore) DeleteGoal(_ context.Context, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[goalID]; !ok {
		return ErrNotFound
	}
	delete(s.goals, goalID)
	return nil
}

func (s *MemoryStore) CreateCompany(_ context.Context, company types.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.CompanyID] = company
	return nil
}

func (s *MemoryStore) GetCompanyByPublicKey(_ context.Context, publicKey string) (*types.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, company := range s.companies {
		if company.PublicKey == publicKey {
			c := company
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) CreateManager(_ context.Context, manager types.Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[manager.ManagerID] = manager
	return nil
}

func (s *MemoryStore) GetManager(_ context.Context, managerID string) (*types.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	manager, ok := s.managers[managerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &manager, nil
}

func (s *MemoryStore) ListManagers(_ context.Context, companyID string) ([]types.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var managers []types.Manager
	for _, manager := range s.managers {
		if manager.CompanyID == companyID {
			managers = append(managers, manager)
		}
	}
	sort.Slice(managers, func(i, j int) bool { return managers[i].ManagerID < managers[j].ManagerID })
	return managers, nil
}

func (s *MemoryStore) DeleteManager(_ context.Context, managerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	manager, ok := s.managers[managerID]
	if !ok {
		return ErrNotFound
	}
	// Remove the linked user record as well
	for email, user := range s.users {
		if user.ManagerID == manager.ManagerID {
			delete(s.users, email)
		}
	}
	delete(s.managers, managerID)
	return nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, team types.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.TeamID] = team
	return nil
}

func (s *MemoryStore) UpdateTeam(_ context.Context, team types.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.TeamID]; !ok {
		return ErrNotFound
	}
	s.teams[team.TeamID] = team
	return nil
}

func (s *MemoryStore) DeleteTeam(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return ErrNotFound
	}
	delete(s.teams, teamID)
	return nil
}
