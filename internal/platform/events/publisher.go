// Package events publishes credential lifecycle events to Kafka. Publishing
// is fail-open: a broker outage is logged and never blocks or unwinds
// issuance or revocation.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"vouch/internal/platform/config"
	id "vouch/pkg/domain"
)

// Event names carried on the lifecycle topic.
const (
	CredentialIssued  = "credential.issued"
	CredentialRevoked = "credential.revoked"
)

// Event is the wire payload for lifecycle notifications.
type Event struct {
	Name         string          `json:"name"`
	CredentialID id.CredentialID `json:"credential_id"`
	IssuerID     id.IssuerID     `json:"issuer_id"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Reason       string          `json:"reason,omitempty"`
}

// Publisher emits lifecycle events. A nil *Publisher is a valid no-op so
// callers never need to branch on whether Kafka is configured.
type Publisher struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewPublisher connects to the configured brokers. Returns nil (disabled)
// when no brokers are configured.
func NewPublisher(cfg config.Kafka, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, logger: logger}, nil
}

// Publish emits an event asynchronously. Delivery failures are logged, not
// returned: lifecycle events are operational telemetry, not part of the
// issuance commit.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal lifecycle event", "name", event.Name, "error", err)
		return
	}
	record := &kgo.Record{
		Key:   []byte(event.CredentialID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish lifecycle event",
				"name", event.Name,
				"credential_id", event.CredentialID,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close(ctx context.Context) {
	if p == nil {
		return
	}
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("flush lifecycle events", "error", err)
	}
	p.client.Close()
}
