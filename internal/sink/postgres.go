package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spacesedan/sentidash/internal/models"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS sentiment_results (
    id          BIGSERIAL PRIMARY KEY,
    source      TEXT NOT NULL,
    row_index   INTEGER NOT NULL,
    mode        TEXT NOT NULL,
    text        TEXT NOT NULL,
    clean_text  TEXT NOT NULL,
    label       TEXT NOT NULL,
    confidence  DOUBLE PRECISION NOT NULL,
    record_date DATE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var resultColumns = []string{"source", "row_index", "mode", "text", "clean_text", "label", "confidence", "record_date"}

// PGConn is the slice of *pgxpool.Pool the sink needs.
type PGConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type Postgres struct {
	db     PGConn
	source string
	mode   models.Mode
}

func NewPostgres(db PGConn, source string, mode models.Mode) *Postgres {
	return &Postgres{db: db, source: source, mode: mode}
}

func (p *Postgres) Write(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	if _, err := p.db.Exec(ctx, createResultsTable); err != nil {
		return fmt.Errorf("[Postgres] failed to create sentiment_results: %w", err)
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		var day any
		if r.HasDate() {
			day = r.Date
		}
		rows = append(rows, []any{
			p.source, r.Row, string(p.mode), r.Text, r.CleanText, r.LabelFor(p.mode), r.Confidence, day,
		})
	}

	n, err := p.db.CopyFrom(ctx, pgx.Identifier{"sentiment_results"}, resultColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("[Postgres] failed to insert sentiment results: %w", err)
	}

	slog.Info("[Postgres] Stored sentiment results", slog.Int64("count", n))
	return nil
}
