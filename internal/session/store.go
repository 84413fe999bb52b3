// Package session keeps the server-side record behind each operator access
// token, so logging out revokes a token before its JWT expiry.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mapease/checkin-service/internal/config"
	"github.com/mapease/checkin-service/internal/domain"
)

// Store persists sessions. Get returns nil for an unknown or expired session.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Set(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context, id string) error
}

// Open selects the store named by backend.
func Open(backend string, client *redis.Client) (Store, error) {
	switch backend {
	case config.BackendMemory, "":
		return NewMemoryStore(time.Now), nil
	case config.BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("session backend redis: no redis client")
		}
		return NewRedisStore(client, time.Now), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", backend)
}
