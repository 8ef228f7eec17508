package bwboot

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// KeyValueStore is the key-value store capability handed to the application.
type KeyValueStore interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// EventBus is the event publishing capability handed to the application.
type EventBus interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var (
	_ KeyValueStore = (*dynamodb.Client)(nil)
	_ EventBus      = (*eventbridge.Client)(nil)
)

const awsConfigTimeout = 10 * time.Second

// NewAWSConfig loads the default AWS SDK v2 configuration. Credentials are resolved
// lazily, so this does not reach the network.
func NewAWSConfig(ctx context.Context) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, awsConfigTimeout)
	defer cancel()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, configErrorWrap("aws", err, "load AWS config")
	}
	return cfg, nil
}

// NewKeyValueStoreClient builds the DynamoDB client for the region named by AWS_REGION.
func NewKeyValueStoreClient(base aws.Config, env Environment) (*dynamodb.Client, error) {
	cfg, err := regionalConfig(base, env)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// NewEventBusClient builds the EventBridge client for the region named by AWS_REGION.
func NewEventBusClient(base aws.Config, env Environment) (*eventbridge.Client, error) {
	cfg, err := regionalConfig(base, env)
	if err != nil {
		return nil, err
	}
	return eventbridge.NewFromConfig(cfg), nil
}

// regionalConfig resolves the region on its own copy of base, so no two clients share
// a resolved endpoint.
func regionalConfig(base aws.Config, env Environment) (aws.Config, error) {
	region, err := ResolveRegion(env.Region)
	if err != nil {
		return aws.Config{}, err
	}
	cfg := base.Copy()
	cfg.Region = region.SystemName
	return cfg, nil
}
