package alerts

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/oceanwatch/internal/models"
)

const (
	DEFAULT_ALERTS_TOPIC = "hazard-keyword-summaries"
	FLUSH_TIMEOUT_MS     = 5000
)

// Publisher emits aggregated hazard-keyword summaries to a Kafka topic for
// downstream alerting. Publishing is fire-and-forget signal egress; a failed
// publish never fails the pipeline invocation that produced the summary.
type Publisher struct {
	producer *kafka.Producer
	topic    string
}

func NewPublisher(broker, topic string) (*Publisher, error) {
	slog.Info("[AlertsPublisher] Initializing Kafka producer...",
		slog.String("broker", broker),
		slog.String("topic", topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": broker,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[AlertsPublisher] Failed to create producer: %w", err)
	}

	if topic == "" {
		topic = DEFAULT_ALERTS_TOPIC
	}

	slog.Info("[AlertsPublisher] Kafka producer initialized successfully")
	return &Publisher{producer: p, topic: topic}, nil
}

// PublishSummary produces one summary keyed by its query string.
func (p *Publisher) PublishSummary(summary models.AlertSummary) error {
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("[AlertsPublisher] Failed to marshal summary: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(summary.Query),
		Value:          jsonData,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("[AlertsPublisher] Failed to produce summary: %w", err)
	}

	slog.Info("[AlertsPublisher] Published keyword summary",
		slog.String("query", summary.Query),
		slog.Int("post_count", summary.PostCount))
	return nil
}

func (p *Publisher) Close() {
	slog.Info("[AlertsPublisher] Shutting down Kafka producer...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[AlertsPublisher] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
}
