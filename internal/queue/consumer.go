package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler processes one decoded mail event.
type Handler func(ctx context.Context, ev MailEvent) error

// Decode parses a message body into a MailEvent.
func Decode(body []byte) (MailEvent, error) {
	var ev MailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return MailEvent{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.To == "" || ev.Kind == "" {
		return MailEvent{}, errors.New("mail event without recipient or kind")
	}
	return ev, nil
}

// ConsumeAMQP connects to RabbitMQ, declares the durable queue and feeds
// every delivery to h. It reconnects with exponential backoff and returns
// only when ctx is cancelled. Failed messages are rejected without requeue
// to avoid tight redelivery loops.
func ConsumeAMQP(ctx context.Context, url, queue string, h Handler, log *zap.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("mail-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queue, h, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("mail-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, h Handler, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Warn("mail-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handle(ctx, d.Body, h); err != nil {
				log.Error("mail-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// ConsumeKafka reads mail events from a Kafka topic as part of groupID
// until ctx is cancelled. Offsets are committed after h returns, whether
// it failed or not, matching the reject-without-requeue policy above.
func ConsumeKafka(ctx context.Context, brokers []string, topic, groupID string, h Handler, log *zap.Logger) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer func() { _ = reader.Close() }()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("mail-consumer: fetch failed", zap.Error(err))
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if err := handle(ctx, m.Value, h); err != nil {
			log.Error("mail-consumer: handle message failed", zap.Error(err), zap.Int64("offset", m.Offset))
		}
		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			log.Warn("mail-consumer: commit failed", zap.Error(err))
		}
	}
}

func handle(ctx context.Context, body []byte, h Handler) error {
	ev, err := Decode(body)
	if err != nil {
		return err
	}
	return h(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
