package model

import "context"

// Publisher pushes one finished summary downstream. Implementations must be
// safe for concurrent use; a failed publish is reported to the caller and
// never aborts the rest of the batch.
type Publisher interface {
	Publish(ctx context.Context, summary ConnectionSummary) error
}
