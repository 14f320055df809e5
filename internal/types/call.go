package types

import "time"

// EventType classifies a funnel milestone recorded against a call
type EventType string

const (
	EventSeed     EventType = "SEED"
	EventCallback EventType = "CALLBACK"
	EventLead     EventType = "LEAD"
	EventSale     EventType = "SALE"
)

// FunnelEvent is a typed milestone attached to exactly one call and one agent.
// Its timestamp may differ slightly from the call's start.
type FunnelEvent struct {
	EventID   string    `json:"eventId" dynamodbav:"EventID"`
	CallID    string    `json:"callId" dynamodbav:"CallID"`
	AgentID   string    `json:"agentId" dynamodbav:"AgentID"`
	CompanyID string    `json:"companyId" dynamodbav:"CompanyID"`
	Type      EventType `json:"type" dynamodbav:"Type"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"Timestamp"`
}

// Call is an immutable completed call ingested from the dialer platform.
// StartAt is always present and DurationSeconds >= 0.
type Call struct {
	CallID          string        `json:"callId" dynamodbav:"CallID"`
	CompanyID       string        `json:"companyId" dynamodbav:"CompanyID"`
	AgentID         string        `json:"agentId" dynamodbav:"AgentID"`
	TeamID          string        `json:"teamId,omitempty" dynamodbav:"TeamID"`
	CalleeID        string        `json:"calleeId,omitempty" dynamodbav:"CalleeID"`
	ExternalRef     string        `json:"externalRef,omitempty" dynamodbav:"ExternalRef"`
	StartAt         time.Time     `json:"startAt" dynamodbav:"StartAt"`
	EndAt           time.Time     `json:"endAt" dynamodbav:"EndAt"`
	DurationSeconds int           `json:"durationSeconds" dynamodbav:"DurationSeconds"`
	IsEffective     bool          `json:"isEffective" dynamodbav:"IsEffective"`
	Events          []FunnelEvent `json:"events,omitempty" dynamodbav:"Events"`
}

// Agent is a dialer agent, upserted from webhook payloads
type Agent struct {
	AgentID   string `json:"agentId" dynamodbav:"AgentID"`
	Name      string `json:"name" dynamodbav:"Name"`
	TeamID    string `json:"teamId,omitempty" dynamodbav:"TeamID"`
	CompanyID string `json:"companyId" dynamodbav:"CompanyID"`
}

// Callee is a called customer, keyed by phone number
type Callee struct {
	PhoneNumber   string `json:"phoneNumber" dynamodbav:"PhoneNumber"`
	TotalAttempts int    `json:"totalAttempts" dynamodbav:"TotalAttempts"`
}

// DailyCallSum is one row of a per-day call aggregate (UTC date)
type DailyCallSum struct {
	Date            time.Time `json:"date"`
	DurationSeconds int64     `json:"durationSeconds"`
	Calls           int       `json:"calls"`
}

// DailyEventCount is one row of a per-day funnel-event aggregate (UTC date)
type DailyEventCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}
