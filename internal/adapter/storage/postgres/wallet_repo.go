package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. A wallet spans two
// tables: the wallets row holds the fiat balance, wallet_positions holds
// one row per asset currently held. Position rows are guarded by the
// wallet row lock: every writer takes the wallets row FOR UPDATE first.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet. Creating a wallet that already exists is
// a no-op; the stored wallet is returned either way.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) (*domain.Wallet, error) {
	query := `INSERT INTO wallets (user_id, fiat_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, w.UserID, w.FiatBalance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return w, nil
	}
	return r.GetByUserID(ctx, w.UserID)
}

// GetByUserID fetches a wallet and its positions (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT user_id, fiat_balance, created_at, updated_at FROM wallets WHERE user_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.FiatBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}

	if err := r.loadPositions(ctx, r.pool, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetByUserIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction; positions are read after the
// wallet row lock is held, so they reflect the locked view.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT user_id, fiat_balance, created_at, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.FiatBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}

	if err := r.loadPositions(ctx, tx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateBalances persists the wallet's fiat balance and syncs its
// position rows within a transaction: live positions are upserted and
// drained ones deleted.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	now := time.Now().UTC()

	tag, err := tx.Exec(ctx,
		`UPDATE wallets SET fiat_balance = $1, updated_at = $2 WHERE user_id = $3`,
		w.FiatBalance, now, w.UserID,
	)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", w.UserID)
	}

	live := make([]string, 0, len(w.Positions))
	for asset := range w.Positions {
		live = append(live, asset)
	}
	_, err = tx.Exec(ctx,
		`DELETE FROM wallet_positions WHERE user_id = $1 AND NOT (asset = ANY($2))`,
		w.UserID, live,
	)
	if err != nil {
		return fmt.Errorf("delete drained positions: %w", err)
	}

	for _, asset := range live {
		p := w.Positions[asset]
		_, err = tx.Exec(ctx,
			`INSERT INTO wallet_positions (user_id, asset, balance, average_cost, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, asset) DO UPDATE
			SET balance = EXCLUDED.balance, average_cost = EXCLUDED.average_cost, updated_at = EXCLUDED.updated_at`,
			w.UserID, asset, p.Balance, p.AverageCost, now,
		)
		if err != nil {
			return fmt.Errorf("upsert position %s: %w", asset, err)
		}
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *WalletRepo) loadPositions(ctx context.Context, q querier, w *domain.Wallet) error {
	rows, err := q.Query(ctx,
		`SELECT asset, balance, average_cost FROM wallet_positions WHERE user_id = $1`,
		w.UserID,
	)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	w.Positions = make(map[string]domain.AssetPosition)
	for rows.Next() {
		var asset string
		var p domain.AssetPosition
		if err := rows.Scan(&asset, &p.Balance, &p.AverageCost); err != nil {
			return fmt.Errorf("scan position row: %w", err)
		}
		w.Positions[asset] = p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate position rows: %w", err)
	}
	return nil
}
