package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/storage"
)

// orderBy mirrors domain.Less. The C collation compares titles bytewise like Go
// string comparison, independent of the database locale.
const orderBy = ` ORDER BY event_date ASC NULLS LAST, price_min ASC, title COLLATE "C" ASC`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ListEvents returns the events matching f in the read ordering contract.
// An empty store yields an empty, non-nil slice.
func (db *DB) ListEvents(ctx context.Context, f domain.Filter) ([]domain.Event, error) {
	return listEvents(ctx, db.Pool, f)
}

// Ping reports whether the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Ready(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func listEvents(ctx context.Context, q querier, f domain.Filter) ([]domain.Event, error) {
	sql, args := buildListQuery(f)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(ev.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return out, nil
}

// category is optional ("" or "All" means no filter)
func buildListQuery(f domain.Filter) (string, []any) {
	var cond []string
	var args []any

	if f.HasCategory() {
		args = append(args, f.Category)
		cond = append(cond, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.FreeOnly {
		cond = append(cond, "price_min = 0")
	}

	sql := "SELECT " + strings.Join(domain.Columns, ", ") + " FROM " + domain.Table
	if len(cond) > 0 {
		sql += " WHERE " + strings.Join(cond, " AND ")
	}
	return sql + orderBy, args
}
