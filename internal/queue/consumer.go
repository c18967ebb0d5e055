package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/smtp"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/rebbitapp/rebbit-api/internal/config"
)

// StartMailConsumer connects to RabbitMQ, declares the mail.send queue
// (durable), and starts consuming messages. Each message is delivered via
// the configured SMTP relay. The function runs a reconnect loop with
// exponential backoff and never returns under normal operation; delivery
// failures are logged and the message rejected without requeue so the
// server keeps operating.
func StartMailConsumer(cfg config.Config, logger *zap.Logger) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(cfg.AMQPURL)
        if err != nil {
            logger.Warn("mail-consumer: dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, cfg, logger); err != nil {
            logger.Warn("mail-consumer: consume loop ended", zap.Error(err))
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection, cfg config.Config, logger *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        logger.Warn("mail-consumer: set QoS failed", zap.Error(err))
    }

    if _, err := ch.QueueDeclare(MailQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(MailQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := deliver(d.Body, cfg); err != nil {
            // No retries: log and drop per the delivery contract.
            logger.Error("mail-consumer: delivery failed", zap.Error(err))
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func deliver(body []byte, cfg config.Config) error {
    var ev MailEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
        cfg.MailFrom, ev.To, ev.Subject, ev.Body)
    addr := cfg.SMTPHost + ":" + cfg.SMTPPort
    auth := smtp.PlainAuth("", cfg.MailFrom, cfg.MailPass, cfg.SMTPHost)
    if err := smtp.SendMail(addr, auth, cfg.MailFrom, []string{ev.To}, []byte(msg)); err != nil {
        return fmt.Errorf("smtp send: %w", err)
    }
    return nil
}
