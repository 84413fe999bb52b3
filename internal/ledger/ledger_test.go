package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/domain"
)

func record(id string) domain.ConsumptionRecord {
	return domain.ConsumptionRecord{
		RegistrationID: id,
		EventID:        "event-123",
		UserID:         "user-" + id,
		Station:        "gate-a",
		ConsumedAt:     time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

// runContract exercises behaviour every backend must share. ids are prefixed
// so runs against shared servers do not collide.
func runContract(t *testing.T, l Ledger, prefix string) {
	t.Helper()
	ctx := context.Background()

	t.Run("first consume wins", func(t *testing.T) {
		id := prefix + "reg-1"
		consumed, err := l.IsConsumed(ctx, id)
		require.NoError(t, err)
		assert.False(t, consumed)

		ok, err := l.TryConsume(ctx, record(id))
		require.NoError(t, err)
		assert.True(t, ok)

		consumed, err = l.IsConsumed(ctx, id)
		require.NoError(t, err)
		assert.True(t, consumed)

		ok, err = l.TryConsume(ctx, record(id))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("record keeps first writer", func(t *testing.T) {
		id := prefix + "reg-2"
		first := record(id)
		second := record(id)
		second.Station = "gate-b"

		ok, err := l.TryConsume(ctx, first)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = l.TryConsume(ctx, second)
		require.NoError(t, err)
		require.False(t, ok)

		got, err := l.Record(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.RegistrationID, got.RegistrationID)
		assert.Equal(t, first.EventID, got.EventID)
		assert.Equal(t, first.UserID, got.UserID)
		assert.Equal(t, "gate-a", got.Station)
		assert.True(t, first.ConsumedAt.Equal(got.ConsumedAt))
	})

	t.Run("missing record", func(t *testing.T) {
		got, err := l.Record(ctx, prefix+"never-seen")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("concurrent consumers admit exactly one", func(t *testing.T) {
		id := prefix + "reg-race"
		const workers = 32
		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				rec := record(id)
				rec.Station = fmt.Sprintf("gate-%d", i)
				ok, err := l.TryConsume(ctx, rec)
				if assert.NoError(t, err) && ok {
					wins.Add(1)
				}
			}(i)
		}
		close(start)
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, l.Ping(ctx))
	})
}

func TestMemoryLedger(t *testing.T) {
	runContract(t, NewMemory(), "")
}

func TestMemoryLedgerCancelledContext(t *testing.T) {
	l := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.TryConsume(ctx, record("reg-1"))
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = l.IsConsumed(ctx, "reg-1")
	assert.ErrorIs(t, err, ErrUnavailable)

	consumed, err := l.IsConsumed(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.False(t, consumed)
}

type slowLedger struct {
	*Memory
}

func (s slowLedger) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	select {
	case <-ctx.Done():
		return false, unavailable("try_consume", ctx.Err())
	case <-time.After(time.Second):
		return s.Memory.TryConsume(ctx, rec)
	}
}

func TestWithTimeout(t *testing.T) {
	l := WithTimeout(slowLedger{NewMemory()}, 20*time.Millisecond)

	_, err := l.TryConsume(context.Background(), record("reg-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	m := NewMemory()
	assert.Same(t, m, WithTimeout(m, 0))
}

func TestOpen(t *testing.T) {
	l, err := Open(config.CheckinConfig{LedgerBackend: config.BackendMemory}, Backends{})
	require.NoError(t, err)
	ok, err := l.TryConsume(context.Background(), record("reg-1"))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, backend := range []string{config.BackendRedis, config.BackendPostgres, config.BackendMongo} {
		_, err := Open(config.CheckinConfig{LedgerBackend: backend}, Backends{})
		assert.Error(t, err, backend)
	}

	_, err = Open(config.CheckinConfig{LedgerBackend: "etcd"}, Backends{})
	assert.ErrorContains(t, err, "unknown ledger backend")
}
