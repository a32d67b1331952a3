package flowlog

import (
	"math/rand"
	"testing"
	"time"
)

const tupleKey = "10.0.0.5:443->10.0.0.9:51000:6"

var sampleLines = []string{
	"2 123456789 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK",
	"2 123456789 eni-1 10.0.0.5 10.0.0.9 443 51000 6 5 500 1000060 1000120 REJECT OK",
}

func TestAggregateTwoContributions(t *testing.T) {
	summaries, counts := Aggregate(sampleLines, time.Now())

	if counts.Processed != 2 || counts.Skipped != 0 {
		t.Fatalf("counts = %+v, want 2 processed / 0 skipped", counts)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}

	s, ok := summaries[tupleKey]
	if !ok {
		t.Fatalf("missing summary for %q, got %v", tupleKey, summaries)
	}
	if s.TotalBytes != 2000 {
		t.Errorf("totalBytes = %d, want 2000", s.TotalBytes)
	}
	if s.TotalPackets != 15 {
		t.Errorf("totalPackets = %d, want 15", s.TotalPackets)
	}
	if s.ConnectionCount != 2 {
		t.Errorf("connectionCount = %d, want 2", s.ConnectionCount)
	}
	if s.AcceptedCount != 1 || s.RejectedCount != 1 {
		t.Errorf("accepted/rejected = %d/%d, want 1/1", s.AcceptedCount, s.RejectedCount)
	}
	if s.FirstSeen != time.Unix(1000000, 0).UTC().Format(time.RFC3339) {
		t.Errorf("firstSeen = %q", s.FirstSeen)
	}
	if s.LastSeen != time.Unix(1000120, 0).UTC().Format(time.RFC3339) {
		t.Errorf("lastSeen = %q", s.LastSeen)
	}
	if s.ID != tupleKey {
		t.Errorf("id = %q, want the tuple key", s.ID)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	lines := []string{
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 5 500 1000060 1000120 REJECT OK",
		"2 1 eni-1 10.0.0.9 10.0.0.5 51000 443 6 7 700 1000030 1000090 ACCEPT OK",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 1 100 999990 1000000 ACCEPT OK",
	}
	now := time.Now()
	want, _ := Aggregate(lines, now)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, _ := Aggregate(shuffled, now)
		if len(got) != len(want) {
			t.Fatalf("permutation %d: %d summaries, want %d", i, len(got), len(want))
		}
		for key, w := range want {
			g := got[key]
			if g != w {
				t.Errorf("permutation %d key %s:\n got %+v\nwant %+v", i, key, g, w)
			}
		}
	}
}

func TestAggregateRerunKeepsIDChangesUUID(t *testing.T) {
	t1 := time.Unix(1700000000, 0)
	t2 := t1.Add(5 * time.Second)

	first, _ := Aggregate(sampleLines, t1)
	second, _ := Aggregate(sampleLines, t2)

	a, b := first[tupleKey], second[tupleKey]
	if a.ID != b.ID {
		t.Errorf("id must be stable across reruns: %q vs %q", a.ID, b.ID)
	}
	if a.UUID == b.UUID {
		t.Error("uuid must differ across reruns at different finalization times")
	}
	if a.SequenceNumber == b.SequenceNumber {
		t.Error("sequence number must differ across reruns")
	}
	if b.SequenceNumber != t2.UnixMicro() {
		t.Errorf("sequenceNumber = %d, want %d", b.SequenceNumber, t2.UnixMicro())
	}
}

func TestAggregateUUIDDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	first, _ := Aggregate(sampleLines, now)
	second, _ := Aggregate(sampleLines, now)
	if first[tupleKey].UUID != second[tupleKey].UUID {
		t.Error("identical inputs at the same finalization time must yield the same uuid")
	}
}

func TestAggregateSkipsNoDataLines(t *testing.T) {
	lines := []string{
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000000 1000060 ACCEPT OK",
		"2 1 eni-1 - - 443 51000 6 - - - - - NODATA",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000060 1000120 ACCEPT OK",
		"2 1 eni-1 - - 443 51000 6 - - - - - NODATA",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000120 1000180 ACCEPT OK",
		"2 1 eni-1 - - 443 51000 6 - - - - - NODATA",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000180 1000240 ACCEPT OK",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000240 1000300 ACCEPT OK",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000300 1000360 ACCEPT OK",
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000360 1000420 ACCEPT OK",
	}
	summaries, counts := Aggregate(lines, time.Now())

	if counts.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", counts.Skipped)
	}
	if counts.Processed != 7 {
		t.Errorf("processed = %d, want 7", counts.Processed)
	}
	s := summaries[tupleKey]
	if s.ConnectionCount != 7 || s.TotalBytes != 7000 || s.TotalPackets != 70 {
		t.Errorf("aggregates must reflect only usable lines, got %+v", s)
	}
}

func TestAggregateIgnoresHeaderAndBlankLines(t *testing.T) {
	lines := []string{
		"version account-id interface-id srcaddr dstaddr srcport dstport protocol packets bytes start end action log-status",
		"",
		sampleLines[0],
	}
	summaries, counts := Aggregate(lines, time.Now())
	if counts.Processed != 1 || counts.Skipped != 0 {
		t.Errorf("counts = %+v, want 1 processed / 0 skipped", counts)
	}
	if len(summaries) != 1 {
		t.Errorf("expected 1 summary, got %d", len(summaries))
	}
}

func TestAggregateOtherActionsCountTraffic(t *testing.T) {
	lines := []string{
		"2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1000 1000000 1000060 SKIPDATA OK",
	}
	summaries, _ := Aggregate(lines, time.Now())
	s := summaries[tupleKey]
	if s.ConnectionCount != 1 || s.TotalBytes != 1000 {
		t.Errorf("other actions must still count traffic, got %+v", s)
	}
	if s.AcceptedCount != 0 || s.RejectedCount != 0 {
		t.Errorf("other actions must not touch accept/reject counters, got %+v", s)
	}
}
