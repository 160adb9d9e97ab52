// Package events publishes session lifecycle notifications to RabbitMQ for
// the email and calendar collaborators. Publishing happens strictly after
// the database transaction commits and is fire-and-forget: a broker outage
// never fails a request.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const sessionQueueName = "session.events"

type SessionEvent struct {
	Action    string `json:"action"`
	SessionID int64  `json:"sessionId"`
	DogID     int64  `json:"dogId"`
	ClientID  int64  `json:"clientId"`
	PackageID *int64 `json:"packageId,omitempty"`
}

type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the durable session.events
// queue. Returns nil on any failure so callers degrade to no events.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("events: failed to dial broker: %v; session events disabled", err)
		return nil
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("events: failed to open channel: %v; session events disabled", err)
		_ = conn.Close()
		return nil
	}

	if _, err := ch.QueueDeclare(sessionQueueName, true, false, false, false, nil); err != nil {
		log.Printf("events: queue declare failed: %v; session events disabled", err)
		_ = ch.Close()
		_ = conn.Close()
		return nil
	}

	return &Publisher{conn: conn, ch: ch}
}

func (p *Publisher) Publish(ctx context.Context, event SessionEvent) {
	if p == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", event.Action, err)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(publishCtx, "", sessionQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("events: publish %s for session %d: %v", event.Action, event.SessionID, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
