package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mapease/checkin-service/internal/domain"
)

// The in-memory repositories back the service when no POSTGRES_DSN is set.
// Lookups that miss return pgx.ErrNoRows, like the Postgres ones.

type memoryRegistrations struct {
	mu   sync.RWMutex
	byID map[string]domain.Registration
}

// NewMemoryRegistrationRepository returns an in-process registration store.
func NewMemoryRegistrationRepository() RegistrationRepository {
	return &memoryRegistrations{byID: make(map[string]domain.Registration)}
}

func (m *memoryRegistrations) Create(ctx context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[reg.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range m.byID {
		if existing.EventID == reg.EventID && strings.EqualFold(existing.Email, reg.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	reg.CreatedAt, reg.UpdatedAt = now, now
	m.byID[reg.ID] = *reg
	return nil
}

func (m *memoryRegistrations) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &reg, nil
}

func (m *memoryRegistrations) ListByEvent(ctx context.Context, eventID string, filter RegistrationFilter) ([]domain.Registration, error) {
	m.mu.RLock()
	var out []domain.Registration
	for _, reg := range m.byID {
		if reg.EventID != eventID {
			continue
		}
		if filter.Status != nil && reg.Status != *filter.Status {
			continue
		}
		out = append(out, reg)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	offset := max(filter.Offset, 0)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit := normalizeLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRegistrations) Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[reg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != from {
		return ErrStaleStatus
	}
	stored.Status = reg.Status
	stored.UserID = reg.UserID
	stored.QRCode = reg.QRCode
	stored.IssuedAt = reg.IssuedAt
	stored.UpdatedAt = time.Now().UTC()
	m.byID[reg.ID] = stored
	reg.UpdatedAt = stored.UpdatedAt
	return nil
}

type memoryEvents struct {
	mu   sync.RWMutex
	byID map[string]domain.Event
}

// NewMemoryEventRepository returns an in-process event store.
func NewMemoryEventRepository() EventRepository {
	return &memoryEvents{byID: make(map[string]domain.Event)}
}

func (m *memoryEvents) Create(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[event.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now
	m.byID[event.ID] = *event
	return nil
}

func (m *memoryEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	event, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &event, nil
}

func (m *memoryEvents) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	m.mu.RLock()
	out := make([]domain.Event, 0, len(m.byID))
	for _, event := range m.byID {
		out = append(out, event)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	offset = max(offset, 0)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit := normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryOperators struct {
	mu   sync.RWMutex
	byID map[string]domain.Operator
}

// NewMemoryOperatorRepository returns an in-process operator store.
func NewMemoryOperatorRepository() OperatorRepository {
	return &memoryOperators{byID: make(map[string]domain.Operator)}
}

func (m *memoryOperators) Create(ctx context.Context, op *domain.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[op.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, op.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	op.CreatedAt, op.UpdatedAt = now, now
	m.byID[op.ID] = *op
	return nil
}

func (m *memoryOperators) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	op, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &op, nil
}

func (m *memoryOperators) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, op := range m.byID {
		if strings.EqualFold(op.Email, email) {
			found := op
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}
