package dal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"injaaz-backend/models"
	"injaaz-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const queryPageLimit = 50

// DynamoDBClient wraps the AWS SDK client with marshalling helpers for the
// visit store.
type DynamoDBClient struct {
	client *dynamodb.Client
	config *models.Config
	logger logger.Logger
}

// NewDynamoDBClient builds a client from the application config. A non-empty
// DynamoDBEndpoint points the client at a local DynamoDB instance.
func NewDynamoDBClient(cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Infof("DynamoDB client ready (region=%s)", cfg.AWSRegion)
	return &DynamoDBClient{client: client, config: cfg, logger: log}, nil
}

// GetItem loads one record into result. A missing record leaves result
// untouched and returns nil; callers detect absence through their zero value.
func (db *DynamoDBClient) GetItem(ctx context.Context, lk models.Lookup, result interface{}) error {
	out, err := db.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(lk.Table),
		Key: map[string]types.AttributeValue{
			lk.Key: &types.AttributeValueMemberS{Value: lk.Value},
		},
	})
	if err != nil {
		db.logger.Errorf("GetItem on %s failed: %v", lk.Table, err)
		return err
	}
	if out.Item == nil {
		return nil
	}
	return attributevalue.UnmarshalMap(out.Item, result)
}

// PutItem writes the full record, replacing any existing one.
func (db *DynamoDBClient) PutItem(ctx context.Context, table string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for %s: %w", table, err)
	}

	_, err = db.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	return err
}

// UpdateItem applies a partial update. Fields are applied in sorted order so
// the generated expression is deterministic.
func (db *DynamoDBClient) UpdateItem(ctx context.Context, table, key, keyValue string, updates map[string]interface{}) error {
	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var expr strings.Builder
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))

	expr.WriteString("SET ")
	for i, field := range fields {
		if i > 0 {
			expr.WriteString(", ")
		}
		fmt.Fprintf(&expr, "#%s = :%s", field, field)
		names["#"+field] = field

		av, err := attributevalue.Marshal(updates[field])
		if err != nil {
			return fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		values[":"+field] = av
	}

	_, err := db.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: keyValue},
		},
		UpdateExpression:          aws.String(expr.String()),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	return err
}

func (db *DynamoDBClient) DeleteItem(ctx context.Context, table, key, value string) error {
	_, err := db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: value},
		},
	})
	return err
}

// QueryByIndex fetches records matching a GSI key into results, which must be
// a pointer to a slice.
func (db *DynamoDBClient) QueryByIndex(ctx context.Context, lk models.Lookup, results interface{}) error {
	out, err := db.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(lk.Table),
		IndexName:              aws.String(lk.Index),
		Limit:                  aws.Int32(queryPageLimit),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": lk.Key,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: lk.Value},
		},
	})
	if err != nil {
		db.logger.Errorf("Query on %s/%s failed: %v", lk.Table, lk.Index, err)
		return err
	}
	return attributevalue.UnmarshalListOfMaps(out.Items, results)
}

func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

func (db *DynamoDBClient) DescribeTable(ctx context.Context, table string) (*dynamodb.DescribeTableOutput, error) {
	return db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
}
