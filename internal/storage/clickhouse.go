package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/config"
	"EagleEye/internal/model"
)

const createSummariesTable = `
CREATE TABLE IF NOT EXISTS flow_summaries (
    Timestamp       DateTime,
    TupleID         String,
    SummaryUUID     String,
    SequenceNumber  Int64,
    SourceIP        String,
    DestinationIP   String,
    SourcePort      Int32,
    DestinationPort Int32,
    Protocol        String,
    TotalBytes      Int64,
    TotalPackets    Int64,
    ConnectionCount Int64,
    AcceptedCount   Int64,
    RejectedCount   Int64,
    FirstSeen       DateTime,
    LastSeen        DateTime
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (TupleID, Timestamp);
`

// ClickHouseWriter retains finalized connection summaries in ClickHouse for
// long-horizon queries, alongside whatever publishers push downstream.
type ClickHouseWriter struct {
	conn driver.Conn
	log  *logrus.Entry
}

// NewClickHouseWriter connects, pings, and ensures the summaries table.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	if err := conn.Exec(context.Background(), createSummariesTable); err != nil {
		return nil, fmt.Errorf("failed to create summaries table: %w", err)
	}
	return &ClickHouseWriter{conn: conn, log: logrus.WithField("component", "clickhouse")}, nil
}

var _ model.SummaryWriter = (*ClickHouseWriter)(nil)

// Write inserts one finalized batch.
func (w *ClickHouseWriter) Write(ctx context.Context, summaries []model.ConnectionSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO flow_summaries")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, s := range summaries {
		ts, _ := time.Parse(time.RFC3339, s.Timestamp)
		first, _ := time.Parse(time.RFC3339, s.FirstSeen)
		last, _ := time.Parse(time.RFC3339, s.LastSeen)
		if err := batch.Append(
			ts,
			s.ID,
			s.UUID,
			s.SequenceNumber,
			s.SourceIP,
			s.DestinationIP,
			int32(s.SourcePort),
			int32(s.DestinationPort),
			s.Protocol,
			s.TotalBytes,
			s.TotalPackets,
			s.ConnectionCount,
			s.AcceptedCount,
			s.RejectedCount,
			first,
			last,
		); err != nil {
			return fmt.Errorf("failed to append summary %s: %w", s.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	w.log.WithField("count", len(summaries)).Debug("summaries written")
	return nil
}

// Close releases the connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
