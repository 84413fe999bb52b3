package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mapease/checkin-service/internal/domain"
)

// DefaultRedisPrefix namespaces consumption keys.
const DefaultRedisPrefix = "checkin:consumed:"

type redisRecord struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	Station        string    `json:"station,omitempty"`
	ConsumedAt     time.Time `json:"consumed_at"`
}

// Redis stores one key per consumed registration and relies on SETNX for atomicity.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis builds a Redis ledger using DefaultRedisPrefix.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: DefaultRedisPrefix}
}

func (r *Redis) key(registrationID string) string {
	return r.prefix + registrationID
}

func (r *Redis) IsConsumed(ctx context.Context, registrationID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(registrationID)).Result()
	if err != nil {
		return false, unavailable("is_consumed", err)
	}
	return n == 1, nil
}

func (r *Redis) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	body, err := json.Marshal(redisRecord{
		RegistrationID: rec.RegistrationID,
		EventID:        rec.EventID,
		UserID:         rec.UserID,
		Station:        rec.Station,
		ConsumedAt:     rec.ConsumedAt.UTC(),
	})
	if err != nil {
		return false, unavailable("try_consume", err)
	}
	// no expiry: the key itself is what prevents reuse
	ok, err := r.client.SetNX(ctx, r.key(rec.RegistrationID), body, 0).Result()
	if err != nil {
		return false, unavailable("try_consume", err)
	}
	return ok, nil
}

func (r *Redis) Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error) {
	raw, err := r.client.Get(ctx, r.key(registrationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, unavailable("record", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, unavailable("record", err)
	}
	return &domain.ConsumptionRecord{
		RegistrationID: rec.RegistrationID,
		EventID:        rec.EventID,
		UserID:         rec.UserID,
		Station:        rec.Station,
		ConsumedAt:     rec.ConsumedAt,
	}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
