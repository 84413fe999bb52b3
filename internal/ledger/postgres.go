package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapease/checkin-service/internal/domain"
)

// Postgres relies on the primary key of checkin_consumptions: the first
// insert for a registration wins, later ones affect no rows.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres builds a Postgres ledger. The table is created by the migrations.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) IsConsumed(ctx context.Context, registrationID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM checkin_consumptions WHERE registration_id=$1)`
	var exists bool
	if err := p.pool.QueryRow(ctx, query, registrationID).Scan(&exists); err != nil {
		return false, unavailable("is_consumed", err)
	}
	return exists, nil
}

func (p *Postgres) TryConsume(ctx context.Context, rec domain.ConsumptionRecord) (bool, error) {
	const query = `
        INSERT INTO checkin_consumptions (registration_id, event_id, user_id, station, consumed_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (registration_id) DO NOTHING`
	tag, err := p.pool.Exec(ctx, query,
		rec.RegistrationID,
		rec.EventID,
		rec.UserID,
		rec.Station,
		rec.ConsumedAt,
	)
	if err != nil {
		return false, unavailable("try_consume", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *Postgres) Record(ctx context.Context, registrationID string) (*domain.ConsumptionRecord, error) {
	const query = `
        SELECT registration_id, event_id, user_id, station, consumed_at
        FROM checkin_consumptions WHERE registration_id=$1`
	var rec domain.ConsumptionRecord
	if err := p.pool.QueryRow(ctx, query, registrationID).Scan(
		&rec.RegistrationID,
		&rec.EventID,
		&rec.UserID,
		&rec.Station,
		&rec.ConsumedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, unavailable("record", err)
	}
	return &rec, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}
