package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceOracle supplies the current unit price for an asset. An unknown
// asset yields a zero quote, not an error; only transport failures error.
type PriceOracle interface {
	Quote(ctx context.Context, asset string) (decimal.Decimal, error)
}

// NotificationSink receives fire-and-forget events emitted by the engine.
// A delivery failure must never unwind a completed ledger operation.
type NotificationSink interface {
	Notify(ctx context.Context, userID uuid.UUID, event domain.EventType, payload map[string]any)
}

// HashService handles PIN hashing (Argon2id).
type HashService interface {
	Hash(pin string) (string, error)
	Verify(pin string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, admin bool) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Admin  bool
}

// QuoteCache is the Redis-layer price quote cache (fast path).
type QuoteCache interface {
	Get(ctx context.Context, asset string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// SendRequest holds validated input for a peer transfer.
type SendRequest struct {
	SenderID          uuid.UUID
	RecipientUsername string
	Amount            decimal.Decimal
	Asset             string
	Pin               *string
}

// TradeRequest holds validated input for a buy or sell.
type TradeRequest struct {
	UserID uuid.UUID
	Asset  string
	Amount decimal.Decimal
	Price  *decimal.Decimal // nil = resolve via PriceOracle
}

// SwapRequest holds validated input for an asset swap.
type SwapRequest struct {
	UserID    uuid.UUID
	FromAsset string
	ToAsset   string
	Amount    decimal.Decimal
	Pin       *string
}

// SendResult carries both legs of a completed transfer.
type SendResult struct {
	SendTx    *domain.Transaction
	ReceiveTx *domain.Transaction
}

// LedgerService orchestrates all value-moving operations. Every command
// is all-or-nothing: validation and authorization run before any
// mutation, and the balance mutation commits together with its ledger
// entry or not at all.
type LedgerService interface {
	AddMoney(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	ReceiveMoney(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, asset string) (*domain.Transaction, error)
	SendMoney(ctx context.Context, req SendRequest) (*SendResult, error)
	BuyAsset(ctx context.Context, req TradeRequest) (*domain.Transaction, error)
	SellAsset(ctx context.Context, req TradeRequest) (*domain.Transaction, error)
	SwapAssets(ctx context.Context, req SwapRequest) (*domain.Transaction, error)
	AdminSetBalance(ctx context.Context, adminID, userID uuid.UUID, asset string, newBalance decimal.Decimal) error

	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetTotalValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	GetHistory(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// PinService gates sensitive transfers behind a short numeric secret.
type PinService interface {
	CreateEntry(ctx context.Context, userID uuid.UUID) (*domain.PinRecord, error)
	SetPin(ctx context.Context, userID uuid.UUID, pin string) error
	Verify(ctx context.Context, userID uuid.UUID, pin string) error
	Reset(ctx context.Context, userID uuid.UUID, adminID uuid.UUID) error
	IsConfigured(ctx context.Context, userID uuid.UUID) (bool, error)
	MustSetPin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AccountService provisions the per-user records the engine depends on.
type AccountService interface {
	// CreateAccount creates the user, an empty wallet, and an unset PIN
	// entry. Wallet and PIN creation are idempotent.
	CreateAccount(ctx context.Context, username string) (*domain.User, error)
	ResolveUsername(ctx context.Context, username string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuditService records administrator actions and PIN verification
// attempts. Logging is asynchronous; the pass/fail decision it records is
// always computed synchronously by the caller first.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
