package types

import "time"

// TemporalGoals is a tenant-scoped set of numeric targets valid for a time
// window. Targets are comparison values only; the analytics engine never
// mutates them. A target of 0 means the metric is not scored.
type TemporalGoals struct {
	GoalID            string    `json:"goalId" dynamodbav:"GoalID"`
	Name              string    `json:"name,omitempty" dynamodbav:"Name"`
	StartTime         time.Time `json:"startTime" dynamodbav:"StartTime"`
	EndTime           time.Time `json:"endTime" dynamodbav:"EndTime"`
	TalkTimeMinutes   float64   `json:"talkTimeMinutes" dynamodbav:"TalkTimeMinutes"`
	Seeds             int       `json:"seeds" dynamodbav:"Seeds"`
	Callbacks         int       `json:"callbacks" dynamodbav:"Callbacks"`
	Leads             int       `json:"leads" dynamodbav:"Leads"`
	Sales             int       `json:"sales" dynamodbav:"Sales"`
	NumberOfCalls     int       `json:"numberOfCalls" dynamodbav:"NumberOfCalls"`
	NumberOfLongCalls int       `json:"numberOfLongCalls" dynamodbav:"NumberOfLongCalls"`
	CompanyID         string    `json:"companyId" dynamodbav:"CompanyID"`
	CreatorID         string    `json:"creatorId" dynamodbav:"CreatorID"`
}
