// Package service holds glue between handlers and external systems.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/queue"
)

// Mailer publishes transactional mail events to the mail.send queue. All
// sends are fire-and-forget: errors are logged, never surfaced to the HTTP
// caller, never retried.
type Mailer struct {
	url    string
	logger *zap.Logger
}

func NewMailer(amqpURL string, logger *zap.Logger) *Mailer {
	return &Mailer{url: amqpURL, logger: logger}
}

// Send publishes a MailEvent asynchronously and returns immediately.
func (m *Mailer) Send(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.publish(ctx, queue.MailEvent{To: to, Subject: subject, Body: body}); err != nil {
			m.logger.Error("mailer: publish failed", zap.String("to", to), zap.Error(err))
		}
	}()
}

func (m *Mailer) publish(ctx context.Context, ev queue.MailEvent) error {
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.MailQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		queue.MailQueueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
