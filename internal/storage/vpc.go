package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"EagleEye/internal/model"
)

// DynamoVpcRegistry reads the VPC list table.
type DynamoVpcRegistry struct {
	client DynamoAPI
	table  string
}

// NewDynamoVpcRegistry creates a registry over the named table.
func NewDynamoVpcRegistry(client DynamoAPI, table string) *DynamoVpcRegistry {
	return &DynamoVpcRegistry{client: client, table: table}
}

var _ model.VpcRegistry = (*DynamoVpcRegistry)(nil)

func (r *DynamoVpcRegistry) List(ctx context.Context) ([]model.VpcEntry, error) {
	var entries []model.VpcEntry
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
		}
		var page []model.VpcEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vpc page: %w", err)
		}
		entries = append(entries, page...)
		if out.LastEvaluatedKey == nil {
			return entries, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// StaticVpcRegistry serves a fixed VPC list, for dry runs and tests.
type StaticVpcRegistry []model.VpcEntry

func (s StaticVpcRegistry) List(ctx context.Context) ([]model.VpcEntry, error) {
	return s, nil
}
