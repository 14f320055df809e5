package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/calldeskhq/backend/internal/types"
	"github.com/rs/zerolog"
)

// sortTimeFormat is fixed-width so lexicographic order matches chronological
const sortTimeFormat = "2006-01-02T15:04:05.000Z"

func formatSortTime(t time.Time) string {
	return t.UTC().Format(sortTimeFormat)
}

// DynamoStore implements Store using AWS DynamoDB
type DynamoStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoStore creates a new DynamoDB store
func NewDynamoStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none), using in-memory store")
		return NewMemoryStore(), nil
	}
}

// queryRange pages through a (CompanyID, sortKey) table for one company with
// the sort key between start and end inclusive
func (s *DynamoStore) queryRange(ctx context.Context, table, sortKey, companyID string, start, end time.Time) ([]map[string]dbtypes.AttributeValue, error) {
	keyCond := expression.Key("CompanyID").Equal(expression.Value(companyID)).
		And(expression.Key(sortKey).Between(
			expression.Value(formatSortTime(start)),
			// '~' sorts after every character used in key suffixes
			expression.Value(formatSortTime(end)+"~"),
		))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	var items []map[string]dbtypes.AttributeValue
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(table),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
		items = append(items, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return items, nil
}

func (s *DynamoStore) callsInRange(ctx context.Context, companyID string, start, end time.Time) ([]types.Call, error) {
	items, err := s.queryRange(ctx, s.config.CallsTable, "StartKey", companyID, start, end)
	if err != nil {
		return nil, err
	}
	var calls []types.Call
	if err := attributevalue.UnmarshalListOfMaps(items, &calls); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calls: %w", err)
	}
	return calls, nil
}

func (s *DynamoStore) eventsInRange(ctx context.Context, companyID string, start, end time.Time) ([]types.FunnelEvent, error) {
	items, err := s.queryRange(ctx, s.config.EventsTable, "EventKey", companyID, start, end)
	if err != nil {
		return nil, err
	}
	var events []types.FunnelEvent
	if err := attributevalue.UnmarshalListOfMaps(items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal funnel events: %w", err)
	}
	return events, nil
}

func (s *DynamoStore) ListCallsInRange(ctx context.Context, companyID string, start, end time.Time) ([]types.Call, error) {
	calls, err := s.callsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	// Event timestamps may drift slightly from the call start, so the event
	// window is padded by a day on both sides before joining on CallID.
	events, err := s.eventsInRange(ctx, companyID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	byCall := make(map[string][]types.FunnelEvent)
	for _, event := range events {
		byCall[event.CallID] = append(byCall[event.CallID], event)
	}
	for i := range calls {
		calls[i].Events = byCall[calls[i].CallID]
	}
	return calls, nil
}

func (s *DynamoStore) GroupedCallSums(ctx context.Context, companyID string, start, end time.Time) ([]types.DailyCallSum, error) {
	calls, err := s.callsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	// DynamoDB has no GROUP BY, so the per-day rollup happens here
	byDay := make(map[time.Time]*types.DailyCallSum)
	var order []time.Time
	for _, call := range calls {
		day := utcDay(call.StartAt)
		sum, ok := byDay[day]
		if !ok {
			sum = &types.DailyCallSum{Date: day}
			byDay[day] = sum
			order = append(order, day)
		}
		sum.DurationSeconds += int64(call.DurationSeconds)
		sum.Calls++
	}

	sums := make([]types.DailyCallSum, 0, len(order))
	for _, day := range order {
		sums = append(sums, *byDay[day])
	}
	return sums, nil
}

func (s *DynamoStore) GroupedEventCounts(ctx context.Context, companyID string, start, end time.Time, eventType types.EventType) ([]types.DailyEventCount, error) {
	events, err := s.eventsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]int)
	var order []time.Time
	for _, event := range events {
		if event.Type != eventType {
			continue
		}
		day := utcDay(event.Timestamp)
		if _, ok := byDay[day]; !ok {
			order = append(order, day)
		}
		byDay[day]++
	}

	counts := make([]types.DailyEventCount, 0, len(order))
	for _, day := range order {
		counts = append(counts, types.DailyEventCount{Date: day, Count: byDay[day]})
	}
	return counts, nil
}

func (s *DynamoStore) EventTypeTotals(ctx context.Context, companyID string, start, end time.Time) (map[types.EventType]int, error) {
	events, err := s.eventsInRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[types.EventType]int)
	for _, event := range events {
		totals[event.Type]++
	}
	return totals, nil
}

// getItem fetches one item by hash key, mapping a miss to ErrNotFound
func (s *DynamoStore) getItem(ctx context.Context, table, keyName, keyValue string, out interface{}) error {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]dbtypes.AttributeValue{
			keyName: &dbtypes.AttributeValueMemberS{Value: keyValue},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to get item from %s: %w", table, err)
	}
	if result.Item == nil {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item from %s: %w", table, err)
	}
	return nil
}

// putItem marshals and stores one item; existing must be true for updates
// of items that are required to already exist
func (s *DynamoStore) putItem(ctx context.Context, table, keyName string, item interface{}, mustExist bool) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for %s: %w", table, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}
	if mustExist {
		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeExists(expression.Name(keyName))).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build expression: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to put item into %s: %w", table, err)
	}
	return nil
}

// deleteItem removes one item by hash key, mapping a miss to ErrNotFound
func (s *DynamoStore) deleteItem(ctx context.Context, table, keyName, keyValue string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(keyName))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key: map[string]dbtypes.AttributeValue{
			keyName: &dbtypes.AttributeValueMemberS{Value: keyValue},
		},
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete item from %s: %w", table, err)
	}
	return nil
}

// scanByCompany pages a full table scan filtered to one company
func (s *DynamoStore) scanByCompany(ctx context.Context, table, companyID string, out interface{}) error {
	filter := expression.Name("CompanyID").Equal(expression.Value(companyID))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	var items []map[string]dbtypes.AttributeValue
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:                 aws.String(table),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		items = append(items, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("failed to unmarshal items from %s: %w", table, err)
	}
	return nil
}

func (s *DynamoStore) GetSchema(ctx context.Context, schemaID string, dayRange *types.DayIndexRange) (*types.Schema, error) {
	var schema types.Schema
	if err := s.getItem(ctx, s.config.SchemasTable, "SchemaID", schemaID, &schema); err != nil {
		return nil, err
	}
	schema.Days = filterDays(schema.Days, dayRange)
	return &schema, nil
}

func (s *DynamoStore) GetGoal(ctx context.Context, goalID string) (*types.TemporalGoals, error) {
	var goal types.TemporalGoals
	if err := s.getItem(ctx, s.config.GoalsTable, "GoalID", goalID, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *DynamoStore) SaveCall(ctx context.Context, call types.Call) error {
	call.Events = nil // events live in their own table
	item, err := attributevalue.MarshalMap(call)
	if err != nil {
		return fmt.Errorf("failed to marshal call: %w", err)
	}
	item["StartKey"] = &dbtypes.AttributeValueMemberS{
		Value: formatSortTime(call.StartAt) + "#" + call.CallID,
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.CallsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save call: %w", err)
	}
	return nil
}

func (s *DynamoStore) UpsertAgent(ctx context.Context, agent types.Agent) error {
	return s.putItem(ctx, s.config.AgentsTable, "AgentID", agent, false)
}

func (s *DynamoStore) UpsertCallee(ctx context.Context, phoneNumber string) (types.Callee, error) {
	update := expression.Add(expression.Name("TotalAttempts"), expression.Value(1))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return types.Callee{}, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.config.CalleesTable),
		Key: map[string]dbtypes.AttributeValue{
			"PhoneNumber": &dbtypes.AttributeValueMemberS{Value: phoneNumber},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              dbtypes.ReturnValueAllNew,
	})
	if err != nil {
		return types.Callee{}, fmt.Errorf("failed to upsert callee: %w", err)
	}

	var callee types.Callee
	if err := attributevalue.UnmarshalMap(result.Attributes, &callee); err != nil {
		return types.Callee{}, fmt.Errorf("failed to unmarshal callee: %w", err)
	}
	callee.PhoneNumber = phoneNumber
	return callee, nil
}

func (s *DynamoStore) RecordFunnelEvent(ctx context.Context, event types.FunnelEvent) error {
	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal funnel event: %w", err)
	}
	item["EventKey"] = &dbtypes.AttributeValueMemberS{
		Value: formatSortTime(event.Timestamp) + "#" + event.EventID,
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.EventsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record funnel event: %w", err)
	}
	return nil
}

func (s *DynamoStore) CreateSchema(ctx context.Context, schema types.Schema) error {
	return s.putItem(ctx, s.config.SchemasTable, "SchemaID", schema, false)
}

func (s *DynamoStore) ListSchemas(ctx context.Context, companyID string) ([]types.Schema, error) {
	var schemas []types.Schema
	if err := s.scanByCompany(ctx, s.config.SchemasTable, companyID, &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

func (s *DynamoStore) DeleteSchema(ctx context.Context, schemaID string) error {
	return s.deleteItem(ctx, s.config.SchemasTable, "SchemaID", schemaID)
}

func (s *DynamoStore) CreateGoal(ctx context.Context, goal types.TemporalGoals) error {
	return s.putItem(ctx, s.config.GoalsTable, "GoalID", goal, false)
}

func (s *DynamoStore) UpdateGoal(ctx context.Context, goal types.TemporalGoals) error {
	return s.putItem(ctx, s.config.GoalsTable, "GoalID", goal, true)
}

func (s *DynamoStore) ListGoals(ctx context.Context, companyID string) ([]types.TemporalGoals, error) {
	var goals []types.TemporalGoals
	if err := s.scanByCompany(ctx, s.config.GoalsTable, companyID, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (s *DynamoStore) ActiveGoals(ctx context.Context, companyID string, at time.Time) ([]types.TemporalGoals, error) {
	goals, err := s.ListGoals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	active := make([]types.TemporalGoals, 0, len(goals))
	for _, goal := range goals {
		if !goal.StartTime.After(at) && !goal.EndTime.Before(at) {
			active = append(active, goal)
		}
	}
	return active, nil
}

func (s *DynamoStore) DeleteGoal(ctx context.Context, goalID string) error {
	return s.deleteItem(ctx, s.config.GoalsTable, "GoalID", goalID)
}

func (s *DynamoStore) CreateCompany(ctx context.Context, company types.Company) error {
	return s.putItem(ctx, s.config.CompaniesTable, "CompanyID", company, false)
}

func (s *DynamoStore) GetCompanyByPublicKey(ctx context.Context, publicKey string) (*types.Company, error) {
	keyCond := expression.Key("PublicKey").Equal(expression.Value(publicKey))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.CompaniesTable),
		IndexName:                 aws.String(publicKeyIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query companies by public key: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	var company types.Company
	if err := attributevalue.UnmarshalMap(result.Items[0], &company); err != nil {
		return nil, fmt.Errorf("failed to unmarshal company: %w", err)
	}
	return &company, nil
}

func (s *DynamoStore) CreateUser(ctx context.Context, user types.User) error {
	return s.putItem(ctx, s.config.UsersTable, "Email", user, false)
}

func (s *DynamoStore) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	if err := s.getItem(ctx, s.config.UsersTable, "Email", email, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DynamoStore) CreateManager(ctx context.Context, manager types.Manager) error {
	return s.putItem(ctx, s.config.ManagersTable, "ManagerID", manager, false)
}

func (s *DynamoStore) GetManager(ctx context.Context, managerID string) (*types.Manager, error) {
	var manager types.Manager
	if err := s.getItem(ctx, s.config.ManagersTable, "ManagerID", managerID, &manager); err != nil {
		return nil, err
	}
	return &manager, nil
}

func (s *DynamoStore) ListManagers(ctx context.Context, companyID string) ([]types.Manager, error) {
	var managers []types.Manager
	if err := s.scanByCompany(ctx, s.config.ManagersTable, companyID, &managers); err != nil {
		return nil, err
	}
	return managers, nil
}

func (s *DynamoStore) DeleteManager(ctx context.Context, managerID string) error {
	manager, err := s.GetManager(ctx, managerID)
	if err != nil {
		return err
	}
	// The login record shares the manager's email
	if err := s.deleteItem(ctx, s.config.UsersTable, "Email", manager.Email); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.deleteItem(ctx, s.config.ManagersTable, "ManagerID", managerID)
}

func (s *DynamoStore) CreateTeam(ctx context.Context, team types.Team) error {
	return s.putItem(ctx, s.config.TeamsTable, "TeamID", team, false)
}

func (s *DynamoStore) UpdateTeam(ctx context.Context, team types.Team) error {
	return s.putItem(ctx, s.config.TeamsTable, "TeamID", team, true)
}

func (s *DynamoStore) DeleteTeam(ctx context.Context, teamID string) error {
	return s.deleteItem(ctx, s.config.TeamsTable, "TeamID", teamID)
}
