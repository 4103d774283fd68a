package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of value movement.
type TransactionType string

const (
	TransactionTypeReceive  TransactionType = "receive"
	TransactionTypeSend     TransactionType = "send"
	TransactionTypeBuy      TransactionType = "buy"
	TransactionTypeSell     TransactionType = "sell"
	TransactionTypeSwap     TransactionType = "swap"
	TransactionTypeAddMoney TransactionType = "add_money"
)

// TransactionStatus is the lifecycle state of a ledger entry. Every entry
// is written after its balance mutation committed, so no pending state is
// modeled.
type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "completed"

// TxMetadata carries the operation-specific fields of a ledger entry.
// Buy: cost + price. Sell: proceeds + price. Swap: to_asset + to_amount + rate.
type TxMetadata struct {
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Proceeds *decimal.Decimal `json:"proceeds,omitempty"`
	ToAsset  string           `json:"to_asset,omitempty"`
	ToAmount *decimal.Decimal `json:"to_amount,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// Transaction is an immutable ledger entry. IDs are assigned monotonically
// by the transaction log; once appended an entry is never mutated or
// deleted. A peer transfer produces two linked entries with distinct ids:
// a send on the sender's ledger and a receive on the recipient's.
type Transaction struct {
	ID           int64             `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	Type         TransactionType   `json:"type"`
	Asset        string            `json:"asset"`
	Amount       decimal.Decimal   `json:"amount"`
	Counterparty *string           `json:"counterparty,omitempty"`
	Status       TransactionStatus `json:"status"`
	Metadata     *TxMetadata       `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IsDebit reports whether this entry moved value out of the wallet.
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeSend || t.Type == TransactionTypeSell ||
		t.Type == TransactionTypeSwap
}
