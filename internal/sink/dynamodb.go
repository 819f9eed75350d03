package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/utils"
)

const (
	maxDynamoBatch   = 25
	maxDynamoRetries = 3
	resultTTL        = 7 * 24 * time.Hour
)

type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type resultItem struct {
	ContentID  string  `dynamodbav:"content_id"`
	Source     string  `dynamodbav:"source"`
	Row        int     `dynamodbav:"row"`
	Mode       string  `dynamodbav:"mode"`
	Text       string  `dynamodbav:"text,omitempty"`
	CleanText  string  `dynamodbav:"clean_text"`
	Label      string  `dynamodbav:"label"`
	Confidence float64 `dynamodbav:"confidence"`
	Date       string  `dynamodbav:"date,omitempty"`
	CreatedAt  int64   `dynamodbav:"created_at"`
	TTL        int64   `dynamodbav:"ttl"`
}

type DynamoDB struct {
	client  BatchWriter
	table   string
	source  string
	mode    models.Mode
	backoff time.Duration
}

func NewDynamoDB(client BatchWriter, table, source string, mode models.Mode) *DynamoDB {
	return &DynamoDB{
		client:  client,
		table:   table,
		source:  source,
		mode:    mode,
		backoff: 500 * time.Millisecond,
	}
}

func (d *DynamoDB) item(r models.Record, now time.Time) (map[string]types.AttributeValue, error) {
	it := resultItem{
		ContentID:  recordID(d.source, r.Row),
		Source:     d.source,
		Row:        r.Row,
		Mode:       string(d.mode),
		Text:       r.Text,
		CleanText:  r.CleanText,
		Label:      r.LabelFor(d.mode),
		Confidence: r.Confidence,
		CreatedAt:  now.Unix(),
		TTL:        now.Add(resultTTL).Unix(),
	}
	if r.HasDate() {
		it.Date = r.Date.Format("2006-01-02")
	}
	return attributevalue.MarshalMap(it)
}

func (d *DynamoDB) Write(ctx context.Context, records []models.Record) error {
	now := time.Now()
	for _, batch := range utils.Chunk(records, maxDynamoBatch) {
		if err := ctx.Err(); err != nil {
			slog.Warn("[DynamoDB] context canceled")
			return err
		}

		writeRequests := make([]types.WriteRequest, 0, len(batch))
		for _, r := range batch {
			item, err := d.item(r, now)
			if err != nil {
				return fmt.Errorf("[DynamoDB] marshal row %d: %w", r.Row, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := d.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Stored sentiment results",
		slog.String("table", d.table),
		slog.Int("count", len(records)))
	return nil
}

func (d *DynamoDB) writeBatch(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{d.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write sentiment results: %w", err)
	}

	backoff := d.backoff
	for retry := 0; len(out.UnprocessedItems) > 0 && retry < maxDynamoRetries; retry++ {
		slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
			slog.Int("attempt", retry+1),
			slog.Int("remaining", len(out.UnprocessedItems[d.table])))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		out, err = d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error: %w", err)
		}
	}

	if remaining := len(out.UnprocessedItems[d.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d items not written after %d retries", remaining, maxDynamoRetries)
	}
	return nil
}
