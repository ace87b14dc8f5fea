package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roadshare/carpool-backend/pkg/logger"
)

// StartNotificationConsumer connects to RabbitMQ and consumes the
// ride.notifications queue, writing each event to the structured log. It
// runs a reconnect loop with capped backoff and never returns; processing
// errors reject the offending message without requeueing so the loop keeps
// moving.
func StartNotificationConsumer(url string, log logger.Logger) {
	runConsumer(url, NotificationQueueName, log, func(body []byte) error {
		var ev RideNotificationEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		log.Info("ride notification",
			logger.String("event_id", ev.ID),
			logger.String("kind", ev.Kind),
			logger.Uint64("ride_id", ev.RideID),
			logger.Uint64("user_id", ev.UserID),
			logger.String("message", ev.Message),
			logger.String("occurred_at", ev.OccurredAt))
		return nil
	})
}

// StartVerificationMailConsumer drains the email.verification queue, the
// delivery side of the code-issue flow. Deliveries are logged without the
// code itself; hooking in an actual mail provider happens here.
func StartVerificationMailConsumer(url string, log logger.Logger) {
	runConsumer(url, VerificationQueueName, log, func(body []byte) error {
		var ev VerificationEmailEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		log.Info("verification email queued",
			logger.String("event_id", ev.ID),
			logger.String("email", ev.Email),
			logger.String("sent_at", ev.SentAt))
		return nil
	})
}

func runConsumer(url, queueName string, log logger.Logger, handle func([]byte) error) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("consumer dial failed",
				logger.String("queue", queueName),
				logger.Error(err), logger.Any("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, queueName, log, handle); err != nil {
			log.Warn("consume loop ended",
				logger.String("queue", queueName), logger.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, queueName string, log logger.Logger, handle func([]byte) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", logger.Error(err))
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handle(d.Body); err != nil {
			log.Error("handle message failed",
				logger.String("queue", queueName), logger.Error(err))
			_ = d.Nack(false, false) // do not requeue, avoids tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
