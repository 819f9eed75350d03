package clients

import (
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type KafkaProducer struct {
	Producer *kafka.Producer
}

func NewKafkaProducer(broker string) (*KafkaProducer, error) {
	slog.Info("[KafkaClient] Connecting to Kafka", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized")
	return &KafkaProducer{Producer: p}, nil
}

// Publish produces value under key and waits for the delivery report.
func (kp *KafkaProducer) Publish(topic string, key, value []byte) error {
	delivery := make(chan kafka.Event, 1)
	defer close(delivery)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}

	var err error
	for i := 0; i < 3; i++ {
		err = kp.Producer.Produce(msg, delivery)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] produce failed: %w", err)
	}

	ev := <-delivery
	m, ok := ev.(*kafka.Message)
	if !ok {
		return fmt.Errorf("[KafkaClient] unexpected delivery event %v", ev)
	}
	if m.TopicPartition.Error != nil {
		return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
	}
	return nil
}

func (kp *KafkaProducer) Close() {
	if kp == nil || kp.Producer == nil {
		return
	}
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := kp.Producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	kp.Producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
