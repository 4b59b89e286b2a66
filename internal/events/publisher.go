// Package events publishes integration records to Kafka.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"hisapi/internal/config"
)

// Message is one event to publish. Key selects the partition.
type Message struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

// Publisher delivers messages to the integration topic.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes to a single topic with a least-bytes balancer.
type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration
}

// NewKafkaPublisher returns a Discard publisher when no brokers are configured.
func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Warn("kafka brokers not configured, integration records will not be published")
		return Discard{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}
	log.Info("kafka publisher ready", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return &KafkaPublisher{w: w, timeout: cfg.WriteTimeout}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		km := kafka.Message{Key: []byte(m.Key), Value: m.Value}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}
	if err := p.w.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("publish %d message(s): %w", len(out), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// ErrDisabled is returned by Discard so callers can mark records as not delivered.
var ErrDisabled = errors.New("publishing is disabled")

// Discard drops every message and reports ErrDisabled.
type Discard struct{}

func (Discard) Publish(context.Context, ...Message) error { return ErrDisabled }
func (Discard) Close() error                              { return nil }
