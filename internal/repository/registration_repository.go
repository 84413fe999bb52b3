package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapease/checkin-service/internal/domain"
)

// RegistrationFilter narrows ListByEvent.
type RegistrationFilter struct {
	Status *domain.RegistrationStatus
	Limit  int
	Offset int
}

// RegistrationRepository persists event registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	ListByEvent(ctx context.Context, eventID string, filter RegistrationFilter) ([]domain.Registration, error)
	// Transition writes reg's status, QR code and issue time only if the stored
	// status is still from. It returns ErrStaleStatus otherwise.
	Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository returns a Postgres-backed implementation.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

const registrationColumns = `id, event_id, user_id, name, email, phone, status, qr_code, issued_at, created_at, updated_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, event_id, user_id, name, email, phone, status, qr_code, issued_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		reg.ID,
		reg.EventID,
		reg.UserID,
		reg.Name,
		reg.Email,
		reg.Phone,
		reg.Status,
		reg.QRCode,
		reg.IssuedAt,
	).Scan(&reg.CreatedAt, &reg.UpdatedAt)
	return translate(err)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id=$1`
	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string, filter RegistrationFilter) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
        WHERE event_id=$1 AND ($2::text IS NULL OR status=$2)
        ORDER BY created_at, id
        LIMIT $3 OFFSET $4`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	rows, err := r.pool.Query(ctx, query, eventID, status, normalizeLimit(filter.Limit), max(filter.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

func (r *registrationRepository) Transition(ctx context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	const query = `
        UPDATE registrations SET status=$1, user_id=$2, qr_code=$3, issued_at=$4, updated_at=NOW()
        WHERE id=$5 AND status=$6
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		reg.Status,
		reg.UserID,
		reg.QRCode,
		reg.IssuedAt,
		reg.ID,
		from,
	).Scan(&reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, reg.ID); getErr != nil {
			return getErr
		}
		return ErrStaleStatus
	}
	return err
}

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	if err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.Name,
		&reg.Email,
		&reg.Phone,
		&reg.Status,
		&reg.QRCode,
		&reg.IssuedAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reg, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
