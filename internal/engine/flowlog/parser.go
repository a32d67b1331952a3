package flowlog

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"EagleEye/internal/model"
)

// Flow-log lines are the version 2 positional format:
// version account-id interface-id srcaddr dstaddr srcport dstport protocol
// packets bytes windowstart windowend action flowlogstatus
const minFields = 13

// placeholder marks an absent field in a flow-log record.
const placeholder = "-"

// Parse errors. ErrSkip covers lines that are structurally fine to ignore
// (empty, header, envelope without payload); the others mark malformed or
// metric-free records that count as skipped.
var (
	ErrSkip       = errors.New("line carries no record")
	ErrShortLine  = errors.New("too few fields")
	ErrNoData     = errors.New("record carries no usable metrics")
	ErrBadNumeric = errors.New("numeric field failed to parse")
)

// envelope is the JSON wrapper some delivery streams put around each line.
type envelope struct {
	Message string `json:"message"`
}

// ParseLine parses one flow-log line into a FlowRecord. Lines wrapped in a
// JSON {"message": ...} envelope are unwrapped first. The error reports why a
// line was skipped; callers count and continue, they never abort the file.
func ParseLine(line string) (model.FlowRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.FlowRecord{}, ErrSkip
	}

	if strings.HasPrefix(line, "{") && strings.Contains(line, `"message"`) {
		var env envelope
		if err := json.Unmarshal([]byte(line), &env); err == nil && env.Message != "" {
			line = strings.TrimSpace(env.Message)
		}
	}

	if line == "" || strings.HasPrefix(line, "version") {
		return model.FlowRecord{}, ErrSkip
	}

	fields := strings.Fields(line)
	if len(fields) < minFields {
		return model.FlowRecord{}, ErrShortLine
	}

	rec := model.FlowRecord{
		Version:     fields[0],
		AccountID:   fields[1],
		InterfaceID: fields[2],
		SrcAddr:     fields[3],
		DstAddr:     fields[4],
		Protocol:    fields[7],
		Action:      fields[12],
		Status:      "OK",
	}
	if len(fields) > 13 {
		rec.Status = fields[13]
	}

	// Records with a dash in any critical field carry no usable metric.
	if rec.SrcAddr == placeholder || rec.DstAddr == placeholder ||
		fields[10] == placeholder || fields[11] == placeholder ||
		rec.Action == placeholder || rec.Status == "NODATA" {
		return model.FlowRecord{}, ErrNoData
	}

	var err error
	if rec.SrcPort, err = parseIntField(fields[5]); err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}
	if rec.DstPort, err = parseIntField(fields[6]); err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}
	packets, err := parseInt64Field(fields[8])
	if err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}
	rec.Packets = packets
	bytes, err := parseInt64Field(fields[9])
	if err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}
	rec.Bytes = bytes
	if rec.WindowStart, err = strconv.ParseInt(fields[10], 10, 64); err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}
	if rec.WindowEnd, err = strconv.ParseInt(fields[11], 10, 64); err != nil {
		return model.FlowRecord{}, ErrBadNumeric
	}

	return rec, nil
}

// parseIntField parses a numeric field, treating the placeholder as zero.
func parseIntField(s string) (int, error) {
	if s == placeholder {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseInt64Field(s string) (int64, error) {
	if s == placeholder {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
