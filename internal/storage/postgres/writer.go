package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/idempotency"
	"example.com/eventplanner/internal/storage"
)

// columnTypes are the SQL types of domain.Columns, position for position.
var columnTypes = []string{
	"text",
	"text",
	"text",
	"numeric",
	"text",
	"text",
	"boolean",
	"timestamptz",
	"double precision",
	"double precision",
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Writer struct {
	db             txBeginner
	skipDuplicates bool
	insertSQL      string
}

// NewWriter returns an append-only writer. With skipDuplicates set, rows whose
// (title, venue, event_date) already exist are left out instead of inserted again.
func NewWriter(db *DB, skipDuplicates bool) *Writer {
	return newWriter(db.Pool, skipDuplicates)
}

func newWriter(b txBeginner, skipDuplicates bool) *Writer {
	w := &Writer{db: b, skipDuplicates: skipDuplicates}
	if skipDuplicates {
		w.insertSQL = insertIfAbsentSQL()
	} else {
		w.insertSQL = insertSQL()
	}
	return w
}

// Write inserts all events in one transaction. Any failed row rolls the whole
// batch back and the error names the row.
func (w *Writer) Write(ctx context.Context, events []domain.Event) (storage.WriteResult, error) {
	var res storage.WriteResult
	if len(events) == 0 {
		return res, nil
	}

	batch := events
	if w.skipDuplicates {
		batch, res.Skipped = idempotency.Unique(events)
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return storage.WriteResult{}, fmt.Errorf("%w: begin: %v", storage.ErrUnavailable, err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range batch {
		ct, err := tx.Exec(ctx, w.insertSQL, batch[i].Values()...)
		if err != nil {
			return storage.WriteResult{}, fmt.Errorf("insert row %d (%q): %w", i, batch[i].Title, err)
		}
		if ct.RowsAffected() == 0 {
			res.Skipped++
			continue
		}
		res.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.WriteResult{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func placeholders(cast bool) []string {
	ph := make([]string, len(domain.Columns))
	for i := range domain.Columns {
		ph[i] = fmt.Sprintf("$%d", i+1)
		if cast {
			ph[i] += "::" + columnTypes[i]
		}
	}
	return ph
}

func columnIndex(name string) int {
	for i, c := range domain.Columns {
		if c == name {
			return i + 1
		}
	}
	panic("unknown column " + name)
}

func insertSQL() string {
	return "INSERT INTO " + domain.Table + " (" + strings.Join(domain.Columns, ",") + ") VALUES (" +
		strings.Join(placeholders(false), ",") + ")"
}

// insertIfAbsentSQL inserts through SELECT so the row can be guarded by NOT EXISTS;
// the casts are needed because SELECT gives the parameters no target type.
func insertIfAbsentSQL() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE title = $%d AND venue = $%d AND event_date IS NOT DISTINCT FROM $%d)",
		domain.Table,
		strings.Join(domain.Columns, ","),
		strings.Join(placeholders(true), ","),
		domain.Table,
		columnIndex("title"),
		columnIndex("venue"),
		columnIndex("event_date"),
	)
}
