package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/streadway/amqp"

	"interview-backend/internal/interview"
	"interview-backend/internal/shared/telemetry"
)

const routingKeyCompleted = "interview.completed"

// Publisher emits interview lifecycle events on a topic exchange so downstream
// consumers (analytics, notifications) can react without coupling to this
// service.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

type completedEvent struct {
	Type        string                    `json:"type"`
	UserID      string                    `json:"userId"`
	Records     []interview.OutcomeRecord `json:"records"`
	CompletedAt time.Time                 `json:"completedAt"`
}

// PublishInterviewCompleted announces a finished interview with its outcome
// records. The routing key is the event type.
func (p *Publisher) PublishInterviewCompleted(_ context.Context, userID string, records []interview.OutcomeRecord) error {
	body, err := json.Marshal(completedEvent{
		Type:        routingKeyCompleted,
		UserID:      userID,
		Records:     records,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	telemetry.Info("event.publish", map[string]any{
		"type":    routingKeyCompleted,
		"user_id": userID,
		"records": len(records),
	})

	return p.channel.Publish(
		p.exchange,
		routingKeyCompleted,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
