package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/primabook/primabook/internal/clock"
	storedomain "github.com/primabook/primabook/internal/eventstore/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&storedomain.StoredEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func event(eventType string) storedomain.EventData {
	return storedomain.EventData{Type: eventType, Data: []byte(`{"ok":true}`)}
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	version, err := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{
		event("payment.created"),
		event("payment.charged"),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	records, err := store.Events(ctx, "agg_1", "payment", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "payment.created", records[0].EventType)
	assert.Equal(t, int64(1), records[0].Version)
	assert.Equal(t, "payment.charged", records[1].EventType)
	assert.Equal(t, int64(2), records[1].Version)
}

func TestEventsFromVersion(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{
		event("payment.created"),
		event("payment.charged"),
		event("payment.refunded"),
	}, 0)
	require.NoError(t, err)

	records, err := store.Events(ctx, "agg_1", "payment", 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].Version)
}

func TestAppendRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.created")}, 0)
	require.NoError(t, err)

	_, err = store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.charged")}, 0)
	var conflict *storedomain.ConcurrencyError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "agg_1", conflict.AggregateID)
	assert.Equal(t, int64(0), conflict.Expected)
	assert.Equal(t, int64(1), conflict.Actual)

	// The losing append left nothing behind.
	records, err := store.Events(ctx, "agg_1", "payment", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestConcurrentWritersExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.created")}, 0)
	require.NoError(t, err)

	// Two writers loaded at version 1 race to append.
	_, firstErr := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.charged")}, 1)
	_, secondErr := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.failed")}, 1)

	require.NoError(t, firstErr)
	require.True(t, storedomain.IsConcurrencyError(secondErr))

	// Stream contains only the winning transition.
	records, err := store.Events(ctx, "agg_1", "payment", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "payment.charged", records[1].EventType)
}

func TestStreamsAreIsolatedByType(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Append(ctx, "agg_1", "payment", []storedomain.EventData{event("payment.created")}, 0)
	require.NoError(t, err)
	_, err = store.Append(ctx, "agg_1", "payout", []storedomain.EventData{event("payout.created")}, 0)
	require.NoError(t, err)

	payments, err := store.Events(ctx, "agg_1", "payment", 0)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	version, err := store.AggregateVersion(ctx, "agg_1", "payout")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestAggregateVersionForMissingStream(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	version, err := store.AggregateVersion(ctx, "missing", "payment")
	require.NoError(t, err)
	assert.Equal(t, storedomain.VersionNotFound, version)
}

func TestAppendRejectsEmptyBatch(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Append(ctx, "agg_1", "payment", nil, 0)
	require.ErrorIs(t, err, storedomain.ErrNoEvents)
}
