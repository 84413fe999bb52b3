package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLedger(t *testing.T) {
	_, client := newTestRedis(t)
	runContract(t, NewRedis(client), "")
}

func TestRedisLedgerStoresRecordWithoutExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedis(client)

	ok, err := l.TryConsume(context.Background(), record("reg-1"))
	require.NoError(t, err)
	require.True(t, ok)

	key := DefaultRedisPrefix + "reg-1"
	require.True(t, mr.Exists(key))
	assert.Zero(t, mr.TTL(key))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "event-123", body["event_id"])
	assert.Equal(t, "gate-a", body["station"])
}

func TestRedisLedgerUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedis(client)
	mr.Close()

	ctx := context.Background()
	_, err := l.TryConsume(ctx, record("reg-1"))
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = l.IsConsumed(ctx, "reg-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = l.Record(ctx, "reg-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, l.Ping(ctx), ErrUnavailable)
}

func TestRedisLedgerCorruptRecordIsUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedis(client)
	require.NoError(t, mr.Set(DefaultRedisPrefix+"reg-1", "{not json"))

	rec, err := l.Record(context.Background(), "reg-1")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrUnavailable)
}
