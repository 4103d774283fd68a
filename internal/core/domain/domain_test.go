package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewWallet_Empty(t *testing.T) {
	userID := uuid.New()
	w := NewWallet(userID, time.Now().UTC())

	assert.Equal(t, userID, w.UserID)
	assert.True(t, w.FiatBalance.IsZero())
	assert.Empty(t, w.Positions)
}

func TestWallet_CreditCreatesPositionAtZeroCost(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())

	w.Credit("BTC", dec("0.5"))

	p, ok := w.Position("BTC")
	require.True(t, ok)
	assert.True(t, p.Balance.Equal(dec("0.5")))
	assert.True(t, p.AverageCost.IsZero())
}

func TestWallet_CreditAtCost_WeightedAverage(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())
	w.Positions["ETH"] = AssetPosition{Balance: dec("10"), AverageCost: dec("100")}

	// Buying 5 more units at 110: (10*100 + 5*110) / 15
	w.CreditAtCost("ETH", dec("5"), dec("550"))

	p, ok := w.Position("ETH")
	require.True(t, ok)
	assert.True(t, p.Balance.Equal(dec("15")))
	expected := dec("1550").Div(dec("15"))
	assert.True(t, p.AverageCost.Equal(expected), "got %s want %s", p.AverageCost, expected)
}

func TestWallet_CreditAtCost_FirstLot(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())

	w.CreditAtCost("BTC", dec("0.01"), dec("450"))

	p, ok := w.Position("BTC")
	require.True(t, ok)
	assert.True(t, p.AverageCost.Equal(dec("45000")))
}

func TestWallet_DebitRemovesDrainedPosition(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())
	w.Positions["BTC"] = AssetPosition{Balance: dec("0.01"), AverageCost: dec("45000")}

	w.Debit("BTC", dec("0.01"))

	_, ok := w.Position("BTC")
	assert.False(t, ok, "drained position must be removed")
}

func TestWallet_DebitPartialKeepsAverageCost(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())
	w.Positions["ETH"] = AssetPosition{Balance: dec("4"), AverageCost: dec("2500")}

	w.Debit("ETH", dec("1"))

	p, ok := w.Position("ETH")
	require.True(t, ok)
	assert.True(t, p.Balance.Equal(dec("3")))
	assert.True(t, p.AverageCost.Equal(dec("2500")))
}

func TestWallet_HasAtLeast(t *testing.T) {
	w := NewWallet(uuid.New(), time.Now().UTC())
	w.Positions["SOL"] = AssetPosition{Balance: dec("2"), AverageCost: dec("150")}

	assert.True(t, w.HasAtLeast("SOL", dec("2")))
	assert.False(t, w.HasAtLeast("SOL", dec("2.001")))
	assert.False(t, w.HasAtLeast("BTC", dec("0.001")))
}

func TestPinRecord_IsConfigured(t *testing.T) {
	r := &PinRecord{UserID: uuid.New(), MustSetPin: true}
	assert.False(t, r.IsConfigured())

	hash := "$argon2id$v=19$m=65536,t=1,p=4$abc$def"
	r.PinHash = &hash
	assert.True(t, r.IsConfigured())

	empty := ""
	r.PinHash = &empty
	assert.False(t, r.IsConfigured())
}

func TestTransaction_IsDebit(t *testing.T) {
	for _, tt := range []struct {
		typ   TransactionType
		debit bool
	}{
		{TransactionTypeSend, true},
		{TransactionTypeSell, true},
		{TransactionTypeSwap, true},
		{TransactionTypeReceive, false},
		{TransactionTypeBuy, false},
		{TransactionTypeAddMoney, false},
	} {
		tx := &Transaction{Type: tt.typ}
		assert.Equal(t, tt.debit, tx.IsDebit(), string(tt.typ))
	}
}
