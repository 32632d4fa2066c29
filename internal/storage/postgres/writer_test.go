package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/storage"
)

type execCall struct {
	sql  string
	args []any
}

// fakeTx records statements; unimplemented pgx.Tx methods panic through the nil embed.
type fakeTx struct {
	pgx.Tx
	calls      []execCall
	failAt     int // 1-based Exec call that fails; 0 never
	affected   func(call int) int64
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	n := len(f.calls)
	if f.failAt == n {
		return pgconn.CommandTag{}, errors.New("violates check constraint")
	}
	rows := int64(1)
	if f.affected != nil {
		rows = f.affected(n)
	}
	if rows == 0 {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx     *fakeTx
	err    error
	begins int
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	b.begins++
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func sampleEvents() []domain.Event {
	at := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	lat, lon := 41.88, -87.62
	return []domain.Event{
		{Title: "Show", Venue: "Metro", Neighborhood: "Chicago", PriceMin: 25, Category: "Music",
			DealDescription: "https://tm/1", EventDate: &at, Lat: &lat, Lon: &lon},
		{Title: "Open Mic", Venue: "The Logan Theatre", Neighborhood: "Logan Square", Category: "Comedy",
			DealDescription: "Free entry, No cover", IsDiscounted: true},
	}
}

func TestWriter_Write_Append(t *testing.T) {
	tx := &fakeTx{}
	w := newWriter(&fakeBeginner{tx: tx}, false)

	res, err := w.Write(context.Background(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, storage.WriteResult{Inserted: 2}, res)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.calls, 2)
	assert.Equal(t,
		"INSERT INTO raw_events (title,venue,neighborhood,price_min,category,deal_description,is_discounted,event_date,lat,lon) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)",
		tx.calls[0].sql)
	assert.Len(t, tx.calls[0].args, len(domain.Columns))
	assert.Equal(t, "Show", tx.calls[0].args[0])
	assert.Equal(t, true, tx.calls[1].args[6])
	assert.Nil(t, tx.calls[1].args[7].(*time.Time))
}

func TestWriter_Write_AppendKeepsDuplicates(t *testing.T) {
	tx := &fakeTx{}
	w := newWriter(&fakeBeginner{tx: tx}, false)

	events := append(sampleEvents(), sampleEvents()...)
	res, err := w.Write(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Inserted)
	assert.Len(t, tx.calls, 4)
}

func TestWriter_Write_RollsBackWholeRun(t *testing.T) {
	tx := &fakeTx{failAt: 2}
	w := newWriter(&fakeBeginner{tx: tx}, false)

	res, err := w.Write(context.Background(), sampleEvents())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `insert row 1 ("Open Mic")`)
	assert.Contains(t, err.Error(), "violates check constraint")
	assert.Equal(t, storage.WriteResult{}, res)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestWriter_Write_StoreUnavailable(t *testing.T) {
	b := &fakeBeginner{err: errors.New("dial tcp: connection refused")}
	_, err := newWriter(b, false).Write(context.Background(), sampleEvents())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWriter_Write_CommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	_, err := newWriter(&fakeBeginner{tx: tx}, false).Write(context.Background(), sampleEvents())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	assert.True(t, tx.rolledBack)
}

func TestWriter_Write_Empty(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	res, err := newWriter(b, false).Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, storage.WriteResult{}, res)
	assert.Zero(t, b.begins, "no transaction for an empty run")
}

func TestWriter_Write_SkipDuplicates(t *testing.T) {
	// second statement finds an existing row
	tx := &fakeTx{affected: func(call int) int64 {
		if call == 2 {
			return 0
		}
		return 1
	}}
	w := newWriter(&fakeBeginner{tx: tx}, true)

	events := append(sampleEvents(), sampleEvents()[0])
	res, err := w.Write(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, storage.WriteResult{Inserted: 1, Skipped: 2}, res)
	require.Len(t, tx.calls, 2, "in-batch duplicate never reaches the store")
	assert.Contains(t, tx.calls[0].sql, "WHERE NOT EXISTS")
	assert.Contains(t, tx.calls[0].sql, "event_date IS NOT DISTINCT FROM $8")
	assert.Contains(t, tx.calls[0].sql, "$4::numeric")
}

func TestColumnTypesAlignWithSchema(t *testing.T) {
	assert.Len(t, columnTypes, len(domain.Columns))
	assert.Equal(t, 1, columnIndex("title"))
	assert.Equal(t, 8, columnIndex("event_date"))
}
