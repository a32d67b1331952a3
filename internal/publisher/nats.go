package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/config"
	"EagleEye/internal/model"
)

// NATS publishes summaries as JSON on a subject, for internal consumers that
// want the stream without going through the GraphQL API.
type NATS struct {
	nc      *nats.Conn
	subject string
	log     *logrus.Entry
}

// NewNATS connects to the configured server.
func NewNATS(cfg config.NATSConfig) (*NATS, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", cfg.URL, err)
	}
	log := logrus.WithField("component", "nats")
	log.WithField("url", cfg.URL).Info("connected to nats")
	return &NATS{nc: nc, subject: cfg.Subject, log: log}, nil
}

var _ model.Publisher = (*NATS)(nil)

// Publish serializes one summary and publishes it on the configured subject.
func (n *NATS) Publish(ctx context.Context, s model.ConnectionSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode summary %s: %w", s.ID, err)
	}
	if err := n.nc.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish summary %s: %w", s.ID, err)
	}
	return nil
}

// Close drains and closes the connection.
func (n *NATS) Close() {
	if n.nc != nil {
		n.nc.Drain()
		n.log.Info("nats connection drained")
	}
}
