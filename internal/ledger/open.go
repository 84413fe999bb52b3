package ledger

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mapease/checkin-service/internal/config"
)

// Backends carries the connections a ledger may be built on.
type Backends struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
	Mongo    *mongo.Database
}

// Open selects the ledger named by cfg.LedgerBackend and applies the ledger timeout.
func Open(cfg config.CheckinConfig, backends Backends) (Ledger, error) {
	var l Ledger
	switch cfg.LedgerBackend {
	case config.BackendMemory, "":
		l = NewMemory()
	case config.BackendRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("ledger backend redis: no redis client")
		}
		l = NewRedis(backends.Redis)
	case config.BackendPostgres:
		if backends.Postgres == nil {
			return nil, fmt.Errorf("ledger backend postgres: no postgres pool")
		}
		l = NewPostgres(backends.Postgres)
	case config.BackendMongo:
		if backends.Mongo == nil {
			return nil, fmt.Errorf("ledger backend mongo: no mongo database")
		}
		l = NewMongo(backends.Mongo)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
	return WithTimeout(l, cfg.LedgerTimeout()), nil
}
