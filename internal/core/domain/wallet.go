package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetPosition tracks the quantity of one asset held and the
// volume-weighted average acquisition cost in fiat per unit. The average
// cost values the holding; it is not required to match the market price.
type AssetPosition struct {
	Balance     decimal.Decimal `json:"balance"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

// Wallet holds a user's fiat balance plus all asset positions.
// An asset appears in Positions only while its balance is strictly
// positive; a drained position is removed, never kept at zero.
type Wallet struct {
	UserID      uuid.UUID                `json:"user_id"`
	FiatBalance decimal.Decimal          `json:"fiat_balance"`
	Positions   map[string]AssetPosition `json:"positions"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewWallet returns an empty wallet for the given user.
func NewWallet(userID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{
		UserID:      userID,
		FiatBalance: decimal.Zero,
		Positions:   make(map[string]AssetPosition),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Position returns the position for asset and whether it exists.
func (w *Wallet) Position(asset string) (AssetPosition, bool) {
	p, ok := w.Positions[asset]
	return p, ok
}

// Credit adds amount to the asset position, creating it at zero average
// cost if absent. The average cost is left untouched.
func (w *Wallet) Credit(asset string, amount decimal.Decimal) {
	p := w.Positions[asset]
	p.Balance = p.Balance.Add(amount)
	w.Positions[asset] = p
}

// CreditAtCost adds amount to the asset position and folds fiatCost into
// the volume-weighted average: (oldBal*oldAvg + fiatCost) / (oldBal + amount).
func (w *Wallet) CreditAtCost(asset string, amount, fiatCost decimal.Decimal) {
	p := w.Positions[asset]
	newBalance := p.Balance.Add(amount)
	if newBalance.IsPositive() {
		p.AverageCost = p.Balance.Mul(p.AverageCost).Add(fiatCost).Div(newBalance)
	}
	p.Balance = newBalance
	w.Positions[asset] = p
}

// Debit removes amount from the asset position. The caller must have
// checked sufficiency; a position drained to zero is deleted and its
// average cost discarded, not recomputed.
func (w *Wallet) Debit(asset string, amount decimal.Decimal) {
	p := w.Positions[asset]
	p.Balance = p.Balance.Sub(amount)
	if p.Balance.IsPositive() {
		w.Positions[asset] = p
		return
	}
	delete(w.Positions, asset)
}

// HasAtLeast reports whether the asset position covers amount.
func (w *Wallet) HasAtLeast(asset string, amount decimal.Decimal) bool {
	p, ok := w.Positions[asset]
	return ok && p.Balance.GreaterThanOrEqual(amount)
}
