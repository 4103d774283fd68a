package dto

import (
	"sort"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the request body for account creation.
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
}

// AccountResponse is the response body for account creation and lookup.
type AccountResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// TokenRequest is the request body for token issuance.
type TokenRequest struct {
	Username string `json:"username" binding:"required,safe_id"`
}

// TokenResponse is the response body for successful token issuance.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// DepositRequest is the request body for a fiat deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ReceiveRequest is the request body for crediting an inbound transfer.
type ReceiveRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Asset  string          `json:"asset" binding:"omitempty,asset_id"`
}

// SendRequest is the request body for a peer transfer. Asset defaults to
// the fiat currency when omitted.
type SendRequest struct {
	RecipientUsername string          `json:"recipient_username" binding:"required,safe_id"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Asset             string          `json:"asset" binding:"omitempty,asset_id"`
	Pin               *string         `json:"pin,omitempty"`
}

// TradeRequest is the request body for a buy or sell. Price overrides the
// oracle quote when present.
type TradeRequest struct {
	Asset  string           `json:"asset" binding:"required,asset_id"`
	Amount decimal.Decimal  `json:"amount" binding:"required"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// SwapRequest is the request body for an asset swap.
type SwapRequest struct {
	FromAsset string          `json:"from_asset" binding:"required,asset_id"`
	ToAsset   string          `json:"to_asset" binding:"required,asset_id"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Pin       *string         `json:"pin,omitempty"`
}

// SetPinRequest is the request body for setting the transfer PIN.
type SetPinRequest struct {
	Pin string `json:"pin" binding:"required,transfer_pin"`
}

// VerifyPinRequest is the request body for a standalone PIN check.
type VerifyPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

// PinStatusResponse reports the PIN gate state for a user.
type PinStatusResponse struct {
	Configured bool `json:"configured"`
	MustSetPin bool `json:"must_set_pin"`
}

// AdminSetBalanceRequest is the request body for a balance override.
type AdminSetBalanceRequest struct {
	UserID  string          `json:"user_id" binding:"required,uuid"`
	Asset   string          `json:"asset" binding:"omitempty,asset_id"`
	Balance decimal.Decimal `json:"balance"`
}

// AdminPinResetRequest is the request body for an administrative PIN reset.
type AdminPinResetRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// PositionResponse is one asset holding in a wallet view.
type PositionResponse struct {
	Asset       string          `json:"asset"`
	Balance     decimal.Decimal `json:"balance"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// WalletResponse is the response for a wallet query.
type WalletResponse struct {
	UserID      string             `json:"user_id"`
	FiatBalance decimal.Decimal    `json:"fiat_balance"`
	Positions   []PositionResponse `json:"positions"`
	UpdatedAt   string             `json:"updated_at"`
}

// TotalValueResponse is the response for a wallet valuation query.
type TotalValueResponse struct {
	TotalValue decimal.Decimal `json:"total_value"`
}

// TransactionMetadata mirrors the operation-specific ledger entry fields.
type TransactionMetadata struct {
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Proceeds *decimal.Decimal `json:"proceeds,omitempty"`
	ToAsset  string           `json:"to_asset,omitempty"`
	ToAmount *decimal.Decimal `json:"to_amount,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// TransactionResponse is the response body for a single ledger entry.
type TransactionResponse struct {
	ID           int64                `json:"id"`
	UserID       string               `json:"user_id"`
	Type         string               `json:"type"`
	Asset        string               `json:"asset"`
	Amount       decimal.Decimal      `json:"amount"`
	Counterparty *string              `json:"counterparty,omitempty"`
	Status       string               `json:"status"`
	Metadata     *TransactionMetadata `json:"metadata,omitempty"`
	CreatedAt    string               `json:"created_at"`
}

// SendResponse carries both legs of a completed transfer.
type SendResponse struct {
	SendTransaction    TransactionResponse `json:"send_transaction"`
	ReceiveTransaction TransactionResponse `json:"receive_transaction"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// TransactionListResponse wraps a paginated ledger listing.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

// FromTransaction maps a domain ledger entry to its response form.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID,
		UserID:       t.UserID.String(),
		Type:         string(t.Type),
		Asset:        t.Asset,
		Amount:       t.Amount,
		Counterparty: t.Counterparty,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.Metadata != nil {
		resp.Metadata = &TransactionMetadata{
			Cost:     t.Metadata.Cost,
			Price:    t.Metadata.Price,
			Proceeds: t.Metadata.Proceeds,
			ToAsset:  t.Metadata.ToAsset,
			ToAmount: t.Metadata.ToAmount,
			Rate:     t.Metadata.Rate,
		}
	}
	return resp
}

// FromWallet maps a domain wallet to its response form with positions
// sorted by asset for a stable output order.
func FromWallet(w *domain.Wallet) WalletResponse {
	resp := WalletResponse{
		UserID:      w.UserID.String(),
		FiatBalance: w.FiatBalance,
		Positions:   make([]PositionResponse, 0, len(w.Positions)),
		UpdatedAt:   w.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, asset := range sortedAssets(w.Positions) {
		p := w.Positions[asset]
		resp.Positions = append(resp.Positions, PositionResponse{
			Asset:       asset,
			Balance:     p.Balance,
			AverageCost: p.AverageCost,
		})
	}
	return resp
}

func sortedAssets(positions map[string]domain.AssetPosition) []string {
	assets := make([]string, 0, len(positions))
	for asset := range positions {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}
