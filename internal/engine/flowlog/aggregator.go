// Package flowlog reduces VPC flow-log files into per-connection traffic
// summaries. One Aggregator instance handles one file: parse, accumulate by
// 5-tuple, finalize once the file's window closes. Instances are not safe for
// concurrent writers; parallelism across files owns one aggregator per file.
package flowlog

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"EagleEye/internal/model"
)

// Counts reports how many lines of a file contributed to the aggregates and
// how many were skipped as malformed or metric-free.
type Counts struct {
	Processed int
	Skipped   int
}

// accumulator is the in-flight state of one connection tuple.
type accumulator struct {
	srcAddr         string
	dstAddr         string
	srcPort         int
	dstPort         int
	protocol        string
	totalBytes      int64
	totalPackets    int64
	connectionCount int64
	acceptedCount   int64
	rejectedCount   int64
	firstSeen       int64
	lastSeen        int64
}

// Aggregator accumulates flow records into per-tuple summaries.
type Aggregator struct {
	flows  map[string]*accumulator
	counts Counts
}

// NewAggregator creates an empty aggregator for a single file.
func NewAggregator() *Aggregator {
	return &Aggregator{flows: make(map[string]*accumulator)}
}

// AddLine parses and accumulates one line. Unusable lines are counted as
// skipped and never fail the batch.
func (a *Aggregator) AddLine(line string) {
	rec, err := ParseLine(line)
	switch err {
	case nil:
		a.Add(rec)
		a.counts.Processed++
	case ErrSkip:
		// headers and blanks are not records at all
	default:
		a.counts.Skipped++
	}
}

// Add accumulates one parsed record into its connection tuple.
func (a *Aggregator) Add(rec model.FlowRecord) {
	key := rec.TupleKey()
	f, ok := a.flows[key]
	if !ok {
		f = &accumulator{
			srcAddr:   rec.SrcAddr,
			dstAddr:   rec.DstAddr,
			srcPort:   rec.SrcPort,
			dstPort:   rec.DstPort,
			protocol:  rec.Protocol,
			firstSeen: rec.WindowStart,
			lastSeen:  rec.WindowEnd,
		}
		a.flows[key] = f
	}

	f.totalBytes += rec.Bytes
	f.totalPackets += rec.Packets
	f.connectionCount++
	switch rec.Action {
	case "ACCEPT":
		f.acceptedCount++
	case "REJECT":
		f.rejectedCount++
	}
	if rec.WindowStart < f.firstSeen {
		f.firstSeen = rec.WindowStart
	}
	if rec.WindowEnd > f.lastSeen {
		f.lastSeen = rec.WindowEnd
	}
}

// Counts returns the line accounting for the file so far.
func (a *Aggregator) Counts() Counts {
	return a.counts
}

// Finalize stamps the derived fields on every summary and returns them keyed
// by tuple. The id is the tuple key itself (idempotent merge identity); the
// uuid hashes the key, processing timestamp, and totals, so reruns of the same
// file form a new batch while keeping the same id; the sequence number is the
// processing time in microseconds for ordered downstream replay.
func (a *Aggregator) Finalize(now time.Time) map[string]model.ConnectionSummary {
	now = now.UTC()
	stamp := now.Format(time.RFC3339)
	seq := now.UnixMicro()

	out := make(map[string]model.ConnectionSummary, len(a.flows))
	for key, f := range a.flows {
		out[key] = model.ConnectionSummary{
			ID:              key,
			UUID:            summaryUUID(key, stamp, f.totalBytes, f.totalPackets),
			SequenceNumber:  seq,
			SourceIP:        f.srcAddr,
			DestinationIP:   f.dstAddr,
			SourcePort:      f.srcPort,
			DestinationPort: f.dstPort,
			Protocol:        f.protocol,
			TotalBytes:      f.totalBytes,
			TotalPackets:    f.totalPackets,
			ConnectionCount: f.connectionCount,
			AcceptedCount:   f.acceptedCount,
			RejectedCount:   f.rejectedCount,
			FirstSeen:       formatUnix(f.firstSeen),
			LastSeen:        formatUnix(f.lastSeen),
			Timestamp:       stamp,
		}
	}
	return out
}

// Aggregate is the one-shot form: feed every line of a file and return the
// finalized summaries plus the line accounting.
func Aggregate(lines []string, now time.Time) (map[string]model.ConnectionSummary, Counts) {
	a := NewAggregator()
	for _, line := range lines {
		a.AddLine(line)
	}
	return a.Finalize(now), a.Counts()
}

// summaryUUID derives the content-hash publish identifier (UUIDv5 in the DNS
// namespace): stable for identical inputs, different whenever any accumulated
// value differs.
func summaryUUID(key, stamp string, totalBytes, totalPackets int64) string {
	input := key + ":" + stamp + ":" + strconv.FormatInt(totalBytes, 10) + ":" + strconv.FormatInt(totalPackets, 10)
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(input)).String()
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
