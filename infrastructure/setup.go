package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"injaaz-backend/models"
	"injaaz-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
)

// TableClient is the subset of the DAL the table bootstrap needs.
type TableClient interface {
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
}

// EnsureTables creates every configured table that does not exist yet.
// Tables are named <prefix>_<name>; existing tables are left untouched.
func EnsureTables(ctx context.Context, db TableClient, cfg *models.Config, log logger.Logger) error {
	for _, name := range cfg.Tables {
		tableName := cfg.DynamoDBTablePrefix + "_" + name

		exists, err := tableExists(ctx, db, tableName)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", tableName, err)
		}
		if exists {
			log.Debugf("Table %s already exists", tableName)
			continue
		}

		input, err := GetTables(tableName)
		if err != nil {
			return fmt.Errorf("failed to resolve schema for %s: %w", tableName, err)
		}
		if err := db.CreateTable(ctx, input); err != nil {
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
		log.Infof("Table %s created", tableName)
	}
	return nil
}

func tableExists(ctx context.Context, db TableClient, tableName string) (bool, error) {
	_, err := db.DescribeTable(ctx, tableName)
	if err != nil {
		if isTableNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}

	return strings.Contains(err.Error(), "ResourceNotFoundException")
}
