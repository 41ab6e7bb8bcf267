package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
)

// Publisher hands mail events to the broker.
type Publisher interface {
	PublishMail(ctx context.Context, ev MailEvent) error
	Close() error
}

// NewPublisher returns the publisher selected by cfg.Kind.
func NewPublisher(cfg config.BrokerConfig, log *zap.Logger) (Publisher, error) {
	switch cfg.Kind {
	case config.BrokerRabbitMQ:
		return &AMQPPublisher{url: cfg.AMQPURL, queue: cfg.Queue, log: log}, nil
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log), nil
	case config.BrokerNone, "":
		return NewLogPublisher(log), nil
	}
	return nil, fmt.Errorf("unknown MAIL_BROKER %q", cfg.Kind)
}

// AMQPPublisher publishes to a durable RabbitMQ queue. It dials per
// message; mail volume is low and this keeps broker restarts invisible to
// the API.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

func (p *AMQPPublisher) PublishMail(ctx context.Context, ev MailEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error { return nil }

// KafkaPublisher writes mail events to a Kafka topic keyed by recipient.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *KafkaPublisher) PublishMail(ctx context.Context, ev MailEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal mail event: %w", err)
	}
	msg := kafka.Message{Key: []byte(ev.To), Value: data, Time: time.Now()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("kafka: publish failed", zap.Error(err))
		return fmt.Errorf("send mail event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct{ log *zap.Logger }

func NewLogPublisher(log *zap.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) PublishMail(_ context.Context, ev MailEvent) error {
	p.log.Info("mail event (no broker)", zap.String("kind", ev.Kind), zap.String("to", ev.To), zap.String("link", ev.Link))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
