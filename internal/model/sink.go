package model

import "context"

// Sink is a generic key-value store for interface items. Production uses
// DynamoDB; dry runs and tests substitute the in-memory implementation, so
// there is a single save path regardless of mode.
type Sink interface {
	Put(ctx context.Context, item InterfaceItem) error
	Get(ctx context.Context, id string) (InterfaceItem, bool, error)
	Scan(ctx context.Context) ([]InterfaceItem, error)

	// Query returns items matching key on a secondary index.
	Query(ctx context.Context, index, key string) ([]InterfaceItem, error)

	Delete(ctx context.Context, id string) error
}
