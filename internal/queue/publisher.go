package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roadshare/carpool-backend/pkg/logger"
)

// Publisher sends domain events to RabbitMQ. Each publish opens its own
// connection, so a broker outage never wedges the request path; errors are
// logged and returned for the caller to ignore or not.
type Publisher struct {
	url string
	log logger.Logger
}

// NewPublisher builds a publisher for the given broker URL.
func NewPublisher(url string, log logger.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish marshals the event as JSON and delivers it to the named queue,
// declaring it durable first. Messages are marked persistent.
func (p *Publisher) Publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq dial failed", logger.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", logger.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		p.log.Error("rabbitmq queue declare failed",
			logger.String("queue", queueName), logger.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal event failed", logger.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Error("rabbitmq publish failed",
			logger.String("queue", queueName), logger.Error(err))
		return err
	}
	return nil
}
