package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(userID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		UserID:      userID,
		FiatBalance: decimal.RequireFromString("1000"),
		Positions: map[string]domain.AssetPosition{
			"BTC": {
				Balance:     decimal.RequireFromString("0.5"),
				AverageCost: decimal.RequireFromString("45000"),
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"user_id", "fiat_balance", "created_at", "updated_at"}).
		AddRow(w.UserID, w.FiatBalance, w.CreatedAt, w.UpdatedAt)
}

func positionRows(w *domain.Wallet) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"asset", "balance", "average_cost"})
	for asset, p := range w.Positions {
		rows.AddRow(asset, p.Balance, p.AverageCost)
	}
	return rows
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.UserID, w.FiatBalance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := repo.Create(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, w.UserID, got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_AlreadyExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.UserID, w.FiatBalance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID).
		WillReturnRows(walletRow(w))
	mock.ExpectQuery("SELECT .+ FROM wallet_positions").
		WithArgs(w.UserID).
		WillReturnRows(positionRows(w))

	got, err := repo.Create(context.Background(), w)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.FiatBalance.Equal(w.FiatBalance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID).
		WillReturnRows(walletRow(w))
	mock.ExpectQuery("SELECT .+ FROM wallet_positions").
		WithArgs(w.UserID).
		WillReturnRows(positionRows(w))

	got, err := repo.GetByUserID(context.Background(), w.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.FiatBalance.Equal(w.FiatBalance))
	require.Contains(t, got.Positions, "BTC")
	assert.True(t, got.Positions["BTC"].Balance.Equal(w.Positions["BTC"].Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "fiat_balance", "created_at", "updated_at"}))

	got, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(w.UserID).
		WillReturnRows(walletRow(w))
	mock.ExpectQuery("SELECT .+ FROM wallet_positions").
		WithArgs(w.UserID).
		WillReturnRows(positionRows(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	got, err := repo.GetByUserIDForUpdate(context.Background(), tx, w.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.UserID, got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalances(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET fiat_balance").
		WithArgs(w.FiatBalance, pgxmock.AnyArg(), w.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM wallet_positions").
		WithArgs(w.UserID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO wallet_positions").
		WithArgs(w.UserID, "BTC", w.Positions["BTC"].Balance, w.Positions["BTC"].AverageCost, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalances_DrainedPositionsOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())
	w.Positions = map[string]domain.AssetPosition{}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET fiat_balance").
		WithArgs(w.FiatBalance, pgxmock.AnyArg(), w.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM wallet_positions").
		WithArgs(w.UserID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalances(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
