package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository resolves and persists the minimal user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks for pessimistic
// locking; validation reads must come from the locked view that the
// mutation commits against.
type WalletRepository interface {
	// Create is idempotent: creating a wallet that already exists returns
	// the stored one untouched.
	Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	// UpdateBalances persists the wallet's fiat balance and syncs its
	// position rows (upserting live ones, deleting drained ones).
	UpdateBalances(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// TransactionRepository is the append-only ledger history.
type TransactionRepository interface {
	// Append stores the entry and fills in its monotonically assigned id.
	Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing ledger entries.
type TransactionListParams struct {
	UserID   *uuid.UUID // nil = all users
	Type     *domain.TransactionType
	Asset    *string
	Page     int
	PageSize int
}

// PinRepository defines persistence operations for PIN records.
type PinRepository interface {
	// Create is idempotent: an existing record is returned untouched.
	Create(ctx context.Context, rec *domain.PinRecord) (*domain.PinRecord, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PinRecord, error)
	Update(ctx context.Context, rec *domain.PinRecord) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
