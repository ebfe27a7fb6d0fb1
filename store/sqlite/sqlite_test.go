package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worklog/attendance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_EmptyStoreIsEmptyList(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveThenLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	e, err := attendance.NewEntry("e-1", attendance.EntryInput{
		Date:       "2025-03-03",
		Name:       "Kim",
		ClockIn:    "09:00",
		ClockOut:   "18:00",
		HourlyWage: decimal.NewNullDecimal(decimal.NewFromInt(10030)),
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, []attendance.Entry{e}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Kim", loaded[0].Name)
	assert.True(t, loaded[0].WorkHours.Equal(decimal.NewFromInt(9)))
	assert.True(t, loaded[0].HourlyWage.Decimal.Equal(decimal.NewFromInt(10030)))

	// Saving again replaces, it does not append.
	require.NoError(t, store.Save(ctx, nil))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoad_MalformedJSON(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, RecordsKey, []byte("{broken")))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, attendance.ErrMalformedData)
}

func TestKeyValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("v1")))
	require.NoError(t, store.Put(ctx, "k", []byte("v2")))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", string(v))
}
