package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/eventplanner/internal/domain"
	"example.com/eventplanner/internal/storage"
)

// fakeRows serves events through Scan in domain.Columns order.
type fakeRows struct {
	pgx.Rows
	events []domain.Event
	i      int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.events) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	vals := r.events[r.i-1].Values()
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(vals[i]))
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestBuildListQuery(t *testing.T) {
	const base = "SELECT title, venue, neighborhood, price_min, category, deal_description, is_discounted, event_date, lat, lon FROM raw_events"

	sql, args := buildListQuery(domain.Filter{Category: "All"})
	assert.Equal(t, base+orderBy, sql)
	assert.Empty(t, args)

	sql, args = buildListQuery(domain.Filter{Category: "Comedy"})
	assert.Equal(t, base+" WHERE category = $1"+orderBy, sql)
	assert.Equal(t, []any{"Comedy"}, args)

	sql, args = buildListQuery(domain.Filter{FreeOnly: true})
	assert.Equal(t, base+" WHERE price_min = 0"+orderBy, sql)
	assert.Empty(t, args)

	sql, args = buildListQuery(domain.Filter{Category: "Movie", FreeOnly: true})
	assert.Equal(t, base+" WHERE category = $1 AND price_min = 0"+orderBy, sql)
	assert.Equal(t, []any{"Movie"}, args)
}

func TestOrderBy_TitleTieBreakIsBytewise(t *testing.T) {
	assert.True(t, strings.HasSuffix(orderBy, `title COLLATE "C" ASC`), orderBy)
	assert.Contains(t, orderBy, "event_date ASC NULLS LAST, price_min ASC")
}

func TestListEvents_Scans(t *testing.T) {
	rows := &fakeRows{events: sampleEvents()}
	q := &fakeQuerier{rows: rows}

	got, err := listEvents(context.Background(), q, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, sampleEvents(), got)
	assert.True(t, rows.closed)
	require.NotNil(t, got[0].EventDate)
	assert.True(t, got[0].EventDate.Equal(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)))
	assert.Nil(t, got[1].Lat)
}

func TestListEvents_Empty(t *testing.T) {
	got, err := listEvents(context.Background(), &fakeQuerier{rows: &fakeRows{}}, domain.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListEvents_Unavailable(t *testing.T) {
	_, err := listEvents(context.Background(), &fakeQuerier{err: errors.New("connection refused")}, domain.Filter{})
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = listEvents(context.Background(), &fakeQuerier{rows: &fakeRows{err: errors.New("conn reset")}}, domain.Filter{})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}
