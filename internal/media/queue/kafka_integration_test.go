//go:build integration

package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"civicdesk/internal/platform/config"
	"civicdesk/pkg/testutil/containers"
)

type KafkaSuite struct {
	suite.Suite
	broker string
	cfg    config.KafkaConfig
	kafka  *Kafka
}

func TestKafkaSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSuite))
}

func (s *KafkaSuite) SetupSuite() {
	s.broker = containers.NewKafkaContainer(s.T()).Broker
	s.cfg = config.KafkaConfig{
		Brokers:           []string{s.broker},
		MessagesTopic:     "outbound-messages-test",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	k, err := NewKafka(context.Background(), s.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.T().Cleanup(k.Close)
	s.kafka = k
}

func (s *KafkaSuite) TestEnsureTopicIsIdempotent() {
	again, err := NewKafka(context.Background(), s.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	again.Close()
}

func (s *KafkaSuite) TestPublishIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.kafka.Publish(ctx, Record{Key: "15551234567", Value: []byte(`{"to":"whatsapp:+15551234567"}`)}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(s.cfg.MessagesTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	var got []*kgo.Record
	fetches.EachRecord(func(r *kgo.Record) { got = append(got, r) })
	s.Require().NotEmpty(got)
	s.Equal("15551234567", string(got[0].Key))
	s.JSONEq(`{"to":"whatsapp:+15551234567"}`, string(got[0].Value))
}

func (s *KafkaSuite) TestHealth() {
	s.NoError(s.kafka.Health(context.Background()))
}
