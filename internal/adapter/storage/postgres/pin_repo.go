package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PinRepo implements ports.PinRepository.
type PinRepo struct {
	pool Pool
}

// NewPinRepo creates a new PinRepo.
func NewPinRepo(pool Pool) *PinRepo {
	return &PinRepo{pool: pool}
}

// Create inserts a new PIN record. If a record already exists for the
// user it is left untouched and returned.
func (r *PinRepo) Create(ctx context.Context, rec *domain.PinRecord) (*domain.PinRecord, error) {
	query := `INSERT INTO pin_records (user_id, pin_hash, must_set_pin, reset_by, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		rec.UserID, rec.PinHash, rec.MustSetPin, rec.ResetBy,
		rec.CreatedAt, rec.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pin record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return rec, nil
	}
	return r.GetByUserID(ctx, rec.UserID)
}

// GetByUserID fetches a PIN record by user id.
func (r *PinRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PinRecord, error) {
	query := `SELECT user_id, pin_hash, must_set_pin, reset_by, created_at, last_updated
		FROM pin_records WHERE user_id = $1`

	rec := &domain.PinRecord{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.PinHash, &rec.MustSetPin, &rec.ResetBy,
		&rec.CreatedAt, &rec.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pin record: %w", err)
	}
	return rec, nil
}

// Update persists changes to an existing PIN record.
func (r *PinRepo) Update(ctx context.Context, rec *domain.PinRecord) error {
	query := `UPDATE pin_records SET pin_hash = $1, must_set_pin = $2, reset_by = $3, last_updated = $4
		WHERE user_id = $5`

	tag, err := r.pool.Exec(ctx, query,
		rec.PinHash, rec.MustSetPin, rec.ResetBy, rec.LastUpdated, rec.UserID,
	)
	if err != nil {
		return fmt.Errorf("update pin record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pin record not found: %s", rec.UserID)
	}
	return nil
}
