package storage

import "os"

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
	DynamoModeNone  DynamoMode = "none"
)

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Mode           DynamoMode
	Endpoint       string // for local mode
	Region         string
	CallsTable     string
	EventsTable    string
	SchemasTable   string
	GoalsTable     string
	CompaniesTable string
	UsersTable     string
	ManagersTable  string
	TeamsTable     string
	AgentsTable    string
	CalleesTable   string
}

// LoadDynamoConfig loads DynamoDB config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := DynamoMode(getEnv("DYNAMO_MODE", "none"))
	if mode != DynamoModeLocal && mode != DynamoModeAWS {
		mode = DynamoModeNone
	}

	return DynamoConfig{
		Mode:           mode,
		Endpoint:       getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:         getEnv("DYNAMO_REGION", "eu-central-1"),
		CallsTable:     getEnv("DYNAMO_CALLS_TABLE", "calldesk-calls"),
		EventsTable:    getEnv("DYNAMO_EVENTS_TABLE", "calldesk-funnel-events"),
		SchemasTable:   getEnv("DYNAMO_SCHEMAS_TABLE", "calldesk-schemas"),
		GoalsTable:     getEnv("DYNAMO_GOALS_TABLE", "calldesk-goals"),
		CompaniesTable: getEnv("DYNAMO_COMPANIES_TABLE", "calldesk-companies"),
		UsersTable:     getEnv("DYNAMO_USERS_TABLE", "calldesk-users"),
		ManagersTable:  getEnv("DYNAMO_MANAGERS_TABLE", "calldesk-managers"),
		TeamsTable:     getEnv("DYNAMO_TEAMS_TABLE", "calldesk-teams"),
		AgentsTable:    getEnv("DYNAMO_AGENTS_TABLE", "calldesk-agents"),
		CalleesTable:   getEnv("DYNAMO_CALLEES_TABLE", "calldesk-callees"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
