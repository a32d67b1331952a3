// Package publisher pushes finalized connection summaries downstream. The
// primary target is the AppSync GraphQL API; a NATS publisher fans the same
// summaries out to internal subscribers.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"EagleEye/internal/model"
)

const publishMutation = `
mutation PublishVpcFlowSummary($input: VpcFlowSummaryInput!) {
    publishVpcFlowSummary(input: $input) {
        id
        sourceIp
        destinationIp
        totalBytes
        totalPackets
        connectionCount
        timestamp
    }
}
`

// KeySource yields the API key used to authenticate mutations.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

// AppSync publishes summaries as GraphQL mutations authenticated by an API
// key resolved lazily from the key source.
type AppSync struct {
	url    string
	keys   KeySource
	client *http.Client
	log    *logrus.Entry
}

// NewAppSync creates a publisher for the given GraphQL endpoint.
func NewAppSync(url string, keys KeySource) *AppSync {
	return &AppSync{
		url:    url,
		keys:   keys,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logrus.WithField("component", "appsync"),
	}
}

var _ model.Publisher = (*AppSync)(nil)

// summaryInput mirrors the VpcFlowSummaryInput schema type. The server
// assigns id and timestamp itself, so they stay out of the input.
type summaryInput struct {
	UUID            string `json:"uuid"`
	SequenceNumber  int64  `json:"sequenceNumber"`
	SourceIP        string `json:"sourceIp"`
	DestinationIP   string `json:"destinationIp"`
	SourcePort      int    `json:"sourcePort"`
	DestinationPort int    `json:"destinationPort"`
	Protocol        string `json:"protocol"`
	TotalBytes      int64  `json:"totalBytes"`
	TotalPackets    int64  `json:"totalPackets"`
	ConnectionCount int64  `json:"connectionCount"`
	AcceptedCount   int64  `json:"acceptedCount"`
	RejectedCount   int64  `json:"rejectedCount"`
	FirstSeen       string `json:"firstSeen"`
	LastSeen        string `json:"lastSeen"`
}

// Publish sends one summary. Any non-200 response is an error; GraphQL-level
// errors in a 200 body are reported by the subscriber side and logged here.
func (a *AppSync) Publish(ctx context.Context, s model.ConnectionSummary) error {
	key, err := a.keys.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve api key: %w", err)
	}

	payload := map[string]any{
		"query": publishMutation,
		"variables": map[string]any{
			"input": summaryInput{
				UUID:            s.UUID,
				SequenceNumber:  s.SequenceNumber,
				SourceIP:        s.SourceIP,
				DestinationIP:   s.DestinationIP,
				SourcePort:      s.SourcePort,
				DestinationPort: s.DestinationPort,
				Protocol:        s.Protocol,
				TotalBytes:      s.TotalBytes,
				TotalPackets:    s.TotalPackets,
				ConnectionCount: s.ConnectionCount,
				AcceptedCount:   s.AcceptedCount,
				RejectedCount:   s.RejectedCount,
				FirstSeen:       s.FirstSeen,
				LastSeen:        s.LastSeen,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish summary %s: %w", s.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("appsync returned %d for summary %s: %s", resp.StatusCode, s.ID, data)
	}

	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && len(result.Errors) > 0 {
		return fmt.Errorf("appsync rejected summary %s: %s", s.ID, result.Errors[0].Message)
	}
	return nil
}
