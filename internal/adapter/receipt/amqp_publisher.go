package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

const (
	ExchangeName = "pos.receipts"
	ExchangeType = "topic"
	RoutingKey   = "receipt.confirmed"
)

// SetupConn dials the broker, retrying while it starts, and declares the
// receipts exchange.
func SetupConn(url string, attempts int, logger *zap.Logger) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ", zap.Int("attempt", i+1), zap.Error(err))
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

// AMQPPublisher hands confirmed receipts to downstream formatters over RabbitMQ.
type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) Name() string {
	return "amqp"
}

func (p *AMQPPublisher) Export(ctx context.Context, r domain.ReceiptRecord) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("could not marshal receipt: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		RoutingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    r.ID,
			Timestamp:    r.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return "", fmt.Errorf("publish receipt %s: %w", r.ID, err)
	}
	return ExchangeName + "/" + RoutingKey, nil
}
