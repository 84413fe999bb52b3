package ledger

import (
	"context"
	"sync"

	"github.com/mapease/checkin-service/internal/domain"
)

// Memory keeps consumption records in process memory. It serialises
// TryConsume with a mutex and suits a single instance or tests.
type Memory struct {
	mu      sync.Mutex
	records map[string]domain.ConsumptionRecord
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]domain.ConsumptionRecord)}
}

func (m *Memory) IsConsumed(ctx context.Context, registrationID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable("is_consumed", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[registrationID]
	return ok, nil
}

func (m *Memory) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable("try_consume", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.RegistrationID]; ok {
		return false, nil
	}
	m.records[rec.RegistrationID] = rec
	return true, nil
}

func (m *Memory) Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("record", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[registrationID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}
