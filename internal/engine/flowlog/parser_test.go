package flowlog

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("2 123456789 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SrcAddr != "10.0.0.5" || rec.DstAddr != "10.0.0.9" {
		t.Errorf("bad addresses: %q -> %q", rec.SrcAddr, rec.DstAddr)
	}
	if rec.SrcPort != 443 || rec.DstPort != 51000 {
		t.Errorf("bad ports: %d -> %d", rec.SrcPort, rec.DstPort)
	}
	if rec.Protocol != "6" || rec.Packets != 10 || rec.Bytes != 1500 {
		t.Errorf("bad metrics: proto=%q packets=%d bytes=%d", rec.Protocol, rec.Packets, rec.Bytes)
	}
	if rec.WindowStart != 1000000 || rec.WindowEnd != 1000060 {
		t.Errorf("bad window: %d-%d", rec.WindowStart, rec.WindowEnd)
	}
	if rec.Action != "ACCEPT" || rec.Status != "OK" {
		t.Errorf("bad action/status: %q/%q", rec.Action, rec.Status)
	}
}

func TestParseLineJSONEnvelope(t *testing.T) {
	line := `{"message": "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK"}`
	rec, err := ParseLine(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SrcAddr != "10.0.0.5" {
		t.Errorf("envelope not unwrapped, got srcaddr %q", rec.SrcAddr)
	}
}

func TestParseLineMissingStatusDefaultsOK(t *testing.T) {
	rec, err := ParseLine("2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != "OK" {
		t.Errorf("expected default status OK, got %q", rec.Status)
	}
}

func TestParseLinePlaceholderPorts(t *testing.T) {
	rec, err := ParseLine("2 123 eni-1 10.0.0.5 10.0.0.9 - - 1 10 840 1000000 1000060 ACCEPT OK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SrcPort != 0 || rec.DstPort != 0 {
		t.Errorf("placeholder ports must parse as 0, got %d/%d", rec.SrcPort, rec.DstPort)
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"empty", "", ErrSkip},
		{"whitespace", "   ", ErrSkip},
		{"header", "version account-id interface-id srcaddr dstaddr srcport dstport protocol packets bytes start end action log-status", ErrSkip},
		{"short line", "2 123 eni-1 10.0.0.5", ErrShortLine},
		{"nodata status", "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT NODATA", ErrNoData},
		{"placeholder srcaddr", "2 123 eni-1 - 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK", ErrNoData},
		{"placeholder windowstart", "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 - 1000060 ACCEPT OK", ErrNoData},
		{"placeholder action", "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 - OK", ErrNoData},
		{"bad packets", "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 xx 1500 1000000 1000060 ACCEPT OK", ErrBadNumeric},
		{"bad window", "2 123 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 10000x0 1000060 ACCEPT OK", ErrBadNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseLine(%q) error = %v, want %v", tt.line, err, tt.want)
			}
		})
	}
}
