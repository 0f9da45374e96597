/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/joho/godotenv"

	rserrors "github.com/suparena/recordstore/errors"
)

// Config carries everything needed to reach one DynamoDB table.
type Config struct {
	// Table is the physical table holding every projection row.
	Table string

	// Region is the AWS region.
	Region string

	// Endpoint overrides the service endpoint, e.g. "http://localhost:8000"
	// for DynamoDB Local. Empty means the real service.
	Endpoint string

	// EnvFile is an optional .env file loaded before credentials are read.
	EnvFile string
}

// Credential environment variables. Read at connect time so a
// misconfiguration fails the first operation, not some later one.
const (
	envAccessKey = "AWS_ACCESS_KEY"
	envSecretKey = "AWS_SECRET_KEY"
)

func loadCredentials(envFile string) (access, secret string, err error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return "", "", fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	access = os.Getenv(envAccessKey)
	secret = os.Getenv(envSecretKey)
	if access == "" || secret == "" {
		return "", "", rserrors.NewValidationError("credentials",
			fmt.Sprintf("%s and %s must be set", envAccessKey, envSecretKey))
	}
	return access, secret, nil
}

// NewClient initializes a DynamoDB client using static credentials from the
// environment (optionally loaded from cfg.EnvFile first). Missing
// credentials fail here, before any table traffic.
func NewClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	access, secret, err := loadCredentials(cfg.EnvFile)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(access, secret, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	log.Printf("DynamoDB client initialized for table %s in region %s", cfg.Table, cfg.Region)
	return client, nil
}

// New connects to the configured table and returns a Store implementing
// datastore.Backend.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Table == "" {
		return nil, rserrors.NewValidationError("table", "table name is required")
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return &Store{client: client, table: cfg.Table}, nil
}

// EnsureTable creates the table and its type index if they do not exist yet,
// then waits until the table is active. Safe to call on every startup.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName:   &s.table,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("PK1"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK1"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(indexByTypeName),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("PK1"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("SK1"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", s.table, err)
		}
	}

	waiter := sdk.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &s.table}, tableWaitTimeout); err != nil {
		return fmt.Errorf("table %s did not become active: %w", s.table, err)
	}
	return nil
}
