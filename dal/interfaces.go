package dal

import (
	"context"

	"injaaz-backend/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DatabaseClientInterface is the storage contract the repositories depend on.
type DatabaseClientInterface interface {
	GetItem(ctx context.Context, lk models.Lookup, result interface{}) error
	PutItem(ctx context.Context, table string, item interface{}) error
	UpdateItem(ctx context.Context, table, key, keyValue string, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, table, key, value string) error
	QueryByIndex(ctx context.Context, lk models.Lookup, results interface{}) error

	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, table string) (*dynamodb.DescribeTableOutput, error)
}
