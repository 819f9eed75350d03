// Package sink persists labelled records.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spacesedan/sentidash/config"
	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/dataset"
	"github.com/spacesedan/sentidash/internal/models"
)

var ErrUnknownSink = errors.New("unknown sink")

const (
	KindCSV      = "csv"
	KindDynamoDB = "dynamodb"
	KindPostgres = "postgres"
	KindKafka    = "kafka"
)

type Sink interface {
	Write(ctx context.Context, records []models.Record) error
}

// Options describe one labelled run. Source names the dataset the records
// came from and, together with the row, identifies each record downstream.
type Options struct {
	Kind string
	Out  string
	// Stdout receives CSV output when Out is empty or "-". Defaults to os.Stdout.
	Stdout io.Writer
	Source string
	Mode   models.Mode
}

// New opens the sink named by opts.Kind. The returned func releases whatever
// connection the sink holds.
func New(ctx context.Context, cfg config.Config, opts Options) (Sink, func(), error) {
	switch opts.Kind {
	case "", KindCSV:
		if opts.Out == "" || opts.Out == "-" {
			w := opts.Stdout
			if w == nil {
				w = os.Stdout
			}
			return NewCSV(w, opts.Mode), func() {}, nil
		}
		f, err := os.Create(opts.Out)
		if err != nil {
			return nil, nil, fmt.Errorf("[Sink] create %s: %w", opts.Out, err)
		}
		return NewCSV(f, opts.Mode), func() { _ = f.Close() }, nil

	case KindDynamoDB:
		awsCfg, err := clients.LoadAWSConfig(ctx, cfg.S3Region)
		if err != nil {
			return nil, nil, err
		}
		db := clients.NewDynamoDBClient(awsCfg, cfg.DynamoDBEndpoint)
		return NewDynamoDB(db, cfg.DynamoDBTable, opts.Source, opts.Mode), func() {}, nil

	case KindPostgres:
		pg, err := clients.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pg.DB, opts.Source, opts.Mode), pg.Close, nil

	case KindKafka:
		producer, err := clients.NewKafkaProducer(cfg.KafkaBroker)
		if err != nil {
			return nil, nil, err
		}
		return NewKafka(producer, cfg.KafkaTopic, opts.Source, opts.Mode), producer.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSink, opts.Kind)
	}
}

type CSV struct {
	w    io.Writer
	mode models.Mode
}

func NewCSV(w io.Writer, mode models.Mode) *CSV {
	return &CSV{w: w, mode: mode}
}

func (c *CSV) Write(_ context.Context, records []models.Record) error {
	return dataset.WriteCSV(c.w, records, c.mode)
}

func recordID(source string, row int) string {
	return fmt.Sprintf("%s#%d", source, row)
}
