package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// publicKeyIndex is the GSI used to resolve a company from its webhook API key
const publicKeyIndex = "PublicKeyIndex"

// CreateTablesIfNotExist creates DynamoDB tables for local development
func CreateTablesIfNotExist(ctx context.Context, client *dynamodb.Client, config DynamoConfig, logger zerolog.Logger) error {
	tables := []struct {
		name string
		pk   string
		sk   string // empty for hash-only tables
		gsi  string // extra hash attribute indexed globally
	}{
		{name: config.CallsTable, pk: "CompanyID", sk: "StartKey"},
		{name: config.EventsTable, pk: "CompanyID", sk: "EventKey"},
		{name: config.SchemasTable, pk: "SchemaID"},
		{name: config.GoalsTable, pk: "GoalID"},
		{name: config.CompaniesTable, pk: "CompanyID", gsi: "PublicKey"},
		{name: config.UsersTable, pk: "Email"},
		{name: config.ManagersTable, pk: "ManagerID"},
		{name: config.TeamsTable, pk: "TeamID"},
		{name: config.AgentsTable, pk: "AgentID"},
		{name: config.CalleesTable, pk: "PhoneNumber"},
	}

	for _, table := range tables {
		_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table.name),
		})
		if err == nil {
			logger.Info().Str("table", table.name).Msg("table already exists")
			continue
		}

		input := &dynamodb.CreateTableInput{
			TableName: aws.String(table.name),
			KeySchema: []dbtypes.KeySchemaElement{
				{AttributeName: aws.String(table.pk), KeyType: dbtypes.KeyTypeHash},
			},
			AttributeDefinitions: []dbtypes.AttributeDefinition{
				{AttributeName: aws.String(table.pk), AttributeType: dbtypes.ScalarAttributeTypeS},
			},
			BillingMode: dbtypes.BillingModePayPerRequest,
		}

		if table.sk != "" {
			input.KeySchema = append(input.KeySchema, dbtypes.KeySchemaElement{
				AttributeName: aws.String(table.sk), KeyType: dbtypes.KeyTypeRange,
			})
			input.AttributeDefinitions = append(input.AttributeDefinitions, dbtypes.AttributeDefinition{
				AttributeName: aws.String(table.sk), AttributeType: dbtypes.ScalarAttributeTypeS,
			})
		}

		if table.gsi != "" {
			input.AttributeDefinitions = append(input.AttributeDefinitions, dbtypes.AttributeDefinition{
				AttributeName: aws.String(table.gsi), AttributeType: dbtypes.ScalarAttributeTypeS,
			})
			input.GlobalSecondaryIndexes = []dbtypes.GlobalSecondaryIndex{
				{
					IndexName: aws.String(publicKeyIndex),
					KeySchema: []dbtypes.KeySchemaElement{
						{AttributeName: aws.String(table.gsi), KeyType: dbtypes.KeyTypeHash},
					},
					Projection: &dbtypes.Projection{ProjectionType: dbtypes.ProjectionTypeAll},
				},
			}
		}

		_, err = client.CreateTable(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
		logger.Info().Str("table", table.name).Msg("table created")
	}

	return nil
}
