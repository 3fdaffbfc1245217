package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const produceTimeout = 5 * time.Second

type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaSink forwards lifecycle events to a Kafka topic, keyed by ticket id so that
// every event of a ticket lands on the same partition in order.
type KafkaSink struct {
	producer recordProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaSink connects a franz-go producer to the configured brokers.
func NewKafkaSink(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newKafkaSink(client, cfg.AuditTopic, logger), nil
}

func newKafkaSink(producer recordProducer, topic string, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, logger: logger}
}

// Register subscribes the sink to every lifecycle event.
func (s *KafkaSink) Register(d Dispatcher) {
	SubscribeAll(d, s.Handle)
}

// Handle publishes one event and waits for the broker acknowledgement.
func (s *KafkaSink) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.TicketID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	produceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), produceTimeout)
	defer cancel()

	if err := s.producer.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		s.logger.Error("failed to publish ticket event",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSink) Close() {
	if s != nil && s.producer != nil {
		s.producer.Close()
	}
}
