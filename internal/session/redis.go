package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mapease/checkin-service/internal/domain"
)

const keyPrefix = "checkin:session:"

type redisSession struct {
	OperatorID string      `json:"operator_id"`
	Role       domain.Role `json:"role"`
	IssuedAt   time.Time   `json:"issued_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// RedisStore keeps each session under its own key with a TTL matching the token.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates the store.
func NewRedisStore(client *redis.Client, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, now: now}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !s.now().Before(rs.ExpiresAt) {
		return nil, nil
	}
	return &domain.Session{
		ID:         id,
		OperatorID: rs.OperatorID,
		Role:       rs.Role,
		IssuedAt:   rs.IssuedAt,
		ExpiresAt:  rs.ExpiresAt,
	}, nil
}

func (s *RedisStore) Set(ctx context.Context, sess domain.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	body, err := json.Marshal(redisSession{
		OperatorID: sess.OperatorID,
		Role:       sess.Role,
		IssuedAt:   sess.IssuedAt.UTC(),
		ExpiresAt:  sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, body, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
