package model

import "context"

// SummaryWriter persists a finalized batch of connection summaries, for
// retention sinks that prefer batches over per-item publishes.
type SummaryWriter interface {
	Write(ctx context.Context, summaries []ConnectionSummary) error
}
