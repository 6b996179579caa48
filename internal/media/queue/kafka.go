package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"civicdesk/internal/platform/config"
)

// Kafka produces relay messages synchronously to a single topic.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the brokers and makes sure the topic exists.
func NewKafka(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.MessagesTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}

	k := &Kafka{client: client, topic: cfg.MessagesTopic, logger: logger}
	if err := k.ensureTopic(ctx, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		client.Close()
		return nil, err
	}
	return k, nil
}

func (k *Kafka) ensureTopic(ctx context.Context, partitions int32, replication int16) error {
	adm := kadm.NewClient(k.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, k.topic)
	if err != nil {
		return fmt.Errorf("kafka: create topic %s: %w", k.topic, err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("kafka: create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (k *Kafka) Publish(ctx context.Context, rec Record) error {
	res := k.client.ProduceSync(ctx, &kgo.Record{
		Topic: k.topic,
		Key:   []byte(rec.Key),
		Value: rec.Value,
	})
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce to %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Health(ctx context.Context) error {
	return k.client.Ping(ctx)
}

func (k *Kafka) Close() {
	k.client.Close()
}
