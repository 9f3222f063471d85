package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/NavDevs/AI-InternShip/internal/telemetry"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

var tracer = telemetry.Tracer("github.com/NavDevs/AI-InternShip/internal/events")

// SubjectPrefix namespaces tracker subjects on a shared NATS server.
const SubjectPrefix = "tracker."

// Subject maps an event type to its NATS subject,
// e.g. EVENT_STATUS_CHANGED → tracker.event_status_changed.
func Subject(eventType string) string {
	return SubjectPrefix + strings.ToLower(eventType)
}

// NATSPublisher publishes events on core NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher returns a publisher on conn.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// Publish implements tracker.Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, ev tracker.Event) error {
	_, span := tracer.Start(ctx, "events.Publish")
	defer span.End()

	payload, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	subject := Subject(ev.Type)
	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(payload)),
	)
	if err := p.conn.Publish(subject, payload); err != nil {
		span.RecordError(err)
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
