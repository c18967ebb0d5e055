// Package queue defines message payloads exchanged over the message broker.
package queue

// MailQueueName is the durable queue carrying transactional mail events.
const MailQueueName = "mail.send"

// MailEvent is published when the API wants a transactional email sent
// (registration confirmation, password-reset link). Delivery is
// fire-and-forget: failures are logged by the consumer and never retried.
type MailEvent struct {
    To      string `json:"to"`
    Subject string `json:"subject"`
    Body    string `json:"body"`
}
