package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentidash/internal/models"
)

type Publisher interface {
	Publish(topic string, key, value []byte) error
}

type resultMessage struct {
	ContentID  string  `json:"content_id"`
	Source     string  `json:"source"`
	Row        int     `json:"row"`
	Mode       string  `json:"mode"`
	CleanText  string  `json:"clean_text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date,omitempty"`
}

type Kafka struct {
	producer Publisher
	topic    string
	source   string
	mode     models.Mode
}

func NewKafka(producer Publisher, topic, source string, mode models.Mode) *Kafka {
	return &Kafka{producer: producer, topic: topic, source: source, mode: mode}
}

// Write publishes one message per record keyed by its content id.
func (k *Kafka) Write(ctx context.Context, records []models.Record) error {
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := resultMessage{
			ContentID:  recordID(k.source, r.Row),
			Source:     k.source,
			Row:        r.Row,
			Mode:       string(k.mode),
			CleanText:  r.CleanText,
			Label:      r.LabelFor(k.mode),
			Confidence: r.Confidence,
		}
		if r.HasDate() {
			msg.Date = r.Date.Format("2006-01-02")
		}

		value, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("[Kafka] marshal row %d: %w", r.Row, err)
		}
		if err := k.producer.Publish(k.topic, []byte(msg.ContentID), value); err != nil {
			return err
		}
	}

	slog.Info("[Kafka] Published sentiment results",
		slog.String("topic", k.topic),
		slog.Int("count", len(records)))
	return nil
}
