package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService. It owns no persistent
// state itself; every command locks the wallet row(s) it touches, applies
// the mutation, and appends the ledger entry inside one database
// transaction, so the balance change and its history record commit or
// roll back together.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	pinSvc     ports.PinService
	oracle     ports.PriceOracle
	notifier   ports.NotificationSink
	auditSvc   ports.AuditService
	transactor ports.DBTransactor
	fiatAsset  string
	systemName string
	log        zerolog.Logger
}

// LedgerDeps holds the collaborators a LedgerServiceImpl is built from.
type LedgerDeps struct {
	WalletRepo ports.WalletRepository
	TxRepo     ports.TransactionRepository
	UserRepo   ports.UserRepository
	PinSvc     ports.PinService
	Oracle     ports.PriceOracle
	Notifier   ports.NotificationSink
	AuditSvc   ports.AuditService
	Transactor ports.DBTransactor
	FiatAsset  string // asset id treated as the fiat currency, e.g. "USD"
	SystemName string // counterparty label for add_money entries
	Logger     zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(deps LedgerDeps) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: deps.WalletRepo,
		txRepo:     deps.TxRepo,
		userRepo:   deps.UserRepo,
		pinSvc:     deps.PinSvc,
		oracle:     deps.Oracle,
		notifier:   deps.Notifier,
		auditSvc:   deps.AuditSvc,
		transactor: deps.Transactor,
		fiatAsset:  deps.FiatAsset,
		systemName: deps.SystemName,
		log:        deps.Logger,
	}
}

// AddMoney credits the fiat balance from the external funding source.
func (s *LedgerServiceImpl) AddMoney(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	wallet.FiatBalance = wallet.FiatBalance.Add(amount)
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	counterparty := s.systemName
	txn := &domain.Transaction{
		UserID:       userID,
		Type:         domain.TransactionTypeAddMoney,
		Asset:        s.fiatAsset,
		Amount:       amount,
		Counterparty: &counterparty,
		Status:       domain.TransactionStatusCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, userID, txn)
	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Msg("money added")

	return txn, nil
}

// ReceiveMoney credits an inbound amount of any asset, creating the
// position at zero average cost if absent.
func (s *LedgerServiceImpl) ReceiveMoney(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, asset string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if asset == "" {
		asset = s.fiatAsset
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	s.credit(wallet, asset, amount)
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		UserID:    userID,
		Type:      domain.TransactionTypeReceive,
		Asset:     asset,
		Amount:    amount,
		Status:    domain.TransactionStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, userID, txn)
	return txn, nil
}

// SendMoney moves amount of asset from sender to recipient as one atomic
// unit, appending a linked send/receive entry pair. The PIN gate and the
// recipient lookup both run before any balance is touched.
func (s *LedgerServiceImpl) SendMoney(ctx context.Context, req ports.SendRequest) (*ports.SendResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Asset == "" {
		req.Asset = s.fiatAsset
	}

	if err := s.checkPinGate(ctx, req.SenderID, req.Pin); err != nil {
		return nil, err
	}

	recipient, err := s.userRepo.GetByUsername(ctx, req.RecipientUsername)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve recipient: %w", err))
	}
	if recipient == nil {
		return nil, apperror.ErrRecipientNotFound()
	}
	if recipient.ID == req.SenderID {
		return nil, apperror.ErrSelfTransfer()
	}

	sender, err := s.userRepo.GetByID(ctx, req.SenderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve sender: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrNotFound("sender")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both wallets in ascending user-id order so two transfers
	// running in opposite directions cannot deadlock.
	first, second := req.SenderID, recipient.ID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	wallets := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range []uuid.UUID{first, second} {
		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		wallets[id] = w
	}
	senderWallet, recipientWallet := wallets[req.SenderID], wallets[recipient.ID]

	if s.balanceOf(senderWallet, req.Asset).LessThan(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	s.debit(senderWallet, req.Asset, req.Amount)
	s.credit(recipientWallet, req.Asset, req.Amount)

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, senderWallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update sender balances: %w", err))
	}
	if err := s.walletRepo.UpdateBalances(ctx, dbTx, recipientWallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update recipient balances: %w", err))
	}

	now := time.Now().UTC()
	sendTxn := &domain.Transaction{
		UserID:       req.SenderID,
		Type:         domain.TransactionTypeSend,
		Asset:        req.Asset,
		Amount:       req.Amount,
		Counterparty: &recipient.Username,
		Status:       domain.TransactionStatusCompleted,
		CreatedAt:    now,
	}
	receiveTxn := &domain.Transaction{
		UserID:       recipient.ID,
		Type:         domain.TransactionTypeReceive,
		Asset:        req.Asset,
		Amount:       req.Amount,
		Counterparty: &sender.Username,
		Status:       domain.TransactionStatusCompleted,
		CreatedAt:    now,
	}
	if err := s.txRepo.Append(ctx, dbTx, sendTxn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append send entry: %w", err))
	}
	if err := s.txRepo.Append(ctx, dbTx, receiveTxn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append receive entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, req.SenderID, sendTxn)
	s.notifyTransaction(ctx, recipient.ID, receiveTxn)
	s.log.Info().
		Int64("send_tx_id", sendTxn.ID).
		Int64("receive_tx_id", receiveTxn.ID).
		Str("sender_id", req.SenderID.String()).
		Str("recipient", recipient.Username).
		Str("asset", req.Asset).
		Str("amount", req.Amount.String()).
		Msg("transfer completed")

	return &ports.SendResult{SendTx: sendTxn, ReceiveTx: receiveTxn}, nil
}

// BuyAsset debits fiat by price*amount and folds the purchase into the
// position's volume-weighted average cost.
func (s *LedgerServiceImpl) BuyAsset(ctx context.Context, req ports.TradeRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Asset == s.fiatAsset {
		return nil, apperror.Validation("cannot trade the fiat asset against itself")
	}

	price, err := s.resolvePrice(ctx, req.Asset, req.Price)
	if err != nil {
		return nil, err
	}
	cost := price.Mul(req.Amount)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if wallet.FiatBalance.LessThan(cost) {
		return nil, apperror.ErrInsufficientBalance()
	}

	wallet.FiatBalance = wallet.FiatBalance.Sub(cost)
	wallet.CreditAtCost(req.Asset, req.Amount, cost)

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	unitPrice := cost.Div(req.Amount)
	txn := &domain.Transaction{
		UserID: req.UserID,
		Type:   domain.TransactionTypeBuy,
		Asset:  req.Asset,
		Amount: req.Amount,
		Status: domain.TransactionStatusCompleted,
		Metadata: &domain.TxMetadata{
			Cost:  &cost,
			Price: &unitPrice,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, req.UserID, txn)
	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("user_id", req.UserID.String()).
		Str("asset", req.Asset).
		Str("amount", req.Amount.String()).
		Str("cost", cost.String()).
		Msg("asset bought")

	return txn, nil
}

// SellAsset debits the asset position and credits fiat with the proceeds.
// Draining the position removes it; the exhausted lot's average cost is
// discarded, not recomputed.
func (s *LedgerServiceImpl) SellAsset(ctx context.Context, req ports.TradeRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Asset == s.fiatAsset {
		return nil, apperror.Validation("cannot trade the fiat asset against itself")
	}

	price, err := s.resolvePrice(ctx, req.Asset, req.Price)
	if err != nil {
		return nil, err
	}
	proceeds := price.Mul(req.Amount)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if !wallet.HasAtLeast(req.Asset, req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	wallet.Debit(req.Asset, req.Amount)
	wallet.FiatBalance = wallet.FiatBalance.Add(proceeds)

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		UserID: req.UserID,
		Type:   domain.TransactionTypeSell,
		Asset:  req.Asset,
		Amount: req.Amount,
		Status: domain.TransactionStatusCompleted,
		Metadata: &domain.TxMetadata{
			Proceeds: &proceeds,
			Price:    &price,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, req.UserID, txn)
	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("user_id", req.UserID.String()).
		Str("asset", req.Asset).
		Str("amount", req.Amount.String()).
		Str("proceeds", proceeds.String()).
		Msg("asset sold")

	return txn, nil
}

// SwapAssets converts amount of fromAsset into toAsset at the live quote
// ratio. The swapped-in units carry their fiat value into the destination
// position's weighted average cost.
func (s *LedgerServiceImpl) SwapAssets(ctx context.Context, req ports.SwapRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromAsset == req.ToAsset {
		return nil, apperror.Validation("from and to assets must differ")
	}

	if err := s.checkPinGate(ctx, req.UserID, req.Pin); err != nil {
		return nil, err
	}

	fromPrice, err := s.oracle.Quote(ctx, req.FromAsset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("quote %s: %w", req.FromAsset, err))
	}
	toPrice, err := s.oracle.Quote(ctx, req.ToAsset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("quote %s: %w", req.ToAsset, err))
	}
	// A zero destination quote makes the conversion ratio undefined.
	if !toPrice.IsPositive() {
		return nil, apperror.ErrNoQuote(req.ToAsset)
	}

	rate := fromPrice.Div(toPrice)
	fiatValue := req.Amount.Mul(fromPrice)
	// Truncate the destination leg. Rounding it would let a swap credit
	// more value than was debited, so a round trip could exceed the
	// original amount.
	toAmount, _ := fiatValue.QuoRem(toPrice, int32(decimal.DivisionPrecision))

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	if req.FromAsset == s.fiatAsset {
		if wallet.FiatBalance.LessThan(req.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}
	} else if !wallet.HasAtLeast(req.FromAsset, req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	s.debit(wallet, req.FromAsset, req.Amount)
	if req.ToAsset == s.fiatAsset {
		wallet.FiatBalance = wallet.FiatBalance.Add(toAmount)
	} else {
		wallet.CreditAtCost(req.ToAsset, toAmount, fiatValue)
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn := &domain.Transaction{
		UserID: req.UserID,
		Type:   domain.TransactionTypeSwap,
		Asset:  req.FromAsset,
		Amount: req.Amount,
		Status: domain.TransactionStatusCompleted,
		Metadata: &domain.TxMetadata{
			ToAsset:  req.ToAsset,
			ToAmount: &toAmount,
			Rate:     &rate,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifyTransaction(ctx, req.UserID, txn)
	s.log.Info().
		Int64("tx_id", txn.ID).
		Str("user_id", req.UserID.String()).
		Str("from", req.FromAsset).
		Str("to", req.ToAsset).
		Str("amount", req.Amount.String()).
		Str("to_amount", toAmount.String()).
		Msg("assets swapped")

	return txn, nil
}

// AdminSetBalance overrides a balance directly, bypassing the PIN gate
// and sufficiency checks. It writes no ledger entry; the override is
// recorded in the administrator audit log instead.
func (s *LedgerServiceImpl) AdminSetBalance(ctx context.Context, adminID, userID uuid.UUID, asset string, newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return apperror.Validation("balance must not be negative")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return apperror.ErrNotFound("wallet")
	}

	var oldBalance decimal.Decimal
	if asset == s.fiatAsset {
		oldBalance = wallet.FiatBalance
		wallet.FiatBalance = newBalance
	} else {
		pos, _ := wallet.Position(asset)
		oldBalance = pos.Balance
		if newBalance.IsPositive() {
			pos.Balance = newBalance
			wallet.Positions[asset] = pos
		} else {
			delete(wallet.Positions, asset)
		}
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet); err != nil {
		return apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionBalanceOverride,
		ResourceType: "wallet",
		ResourceID:   userID.String(),
		Details: fmt.Sprintf(`{"admin_id":%q,"asset":%q,"old_balance":%q,"new_balance":%q}`,
			adminID.String(), asset, oldBalance.String(), newBalance.String()),
		CreatedAt: time.Now().UTC(),
	})

	s.log.Warn().
		Str("admin_id", adminID.String()).
		Str("user_id", userID.String()).
		Str("asset", asset).
		Str("new_balance", newBalance.String()).
		Msg("administrative balance override")

	return nil
}

// GetWallet returns the current wallet snapshot.
func (s *LedgerServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// GetTotalValue returns fiat balance plus every position valued at the
// current oracle quote.
func (s *LedgerServiceImpl) GetTotalValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := wallet.FiatBalance
	for asset, pos := range wallet.Positions {
		price, err := s.oracle.Quote(ctx, asset)
		if err != nil {
			return decimal.Zero, apperror.InternalError(fmt.Errorf("quote %s: %w", asset, err))
		}
		total = total.Add(pos.Balance.Mul(price))
	}
	return total, nil
}

// GetHistory returns a filtered, paginated slice of the ledger.
func (s *LedgerServiceImpl) GetHistory(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// checkPinGate enforces the transfer-PIN on sensitive operations. When a
// PIN is configured it is mandatory and must verify; an unset PIN leaves
// the operation ungated. The decision is made before any mutation.
func (s *LedgerServiceImpl) checkPinGate(ctx context.Context, userID uuid.UUID, pin *string) error {
	configured, err := s.pinSvc.IsConfigured(ctx, userID)
	if err != nil {
		return err
	}
	if !configured {
		return nil
	}
	if pin == nil || *pin == "" {
		return apperror.ErrPinRequired()
	}
	return s.pinSvc.Verify(ctx, userID, *pin)
}

// resolvePrice takes the caller's explicit price when present, otherwise
// the oracle quote.
func (s *LedgerServiceImpl) resolvePrice(ctx context.Context, asset string, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, apperror.Validation("price must not be negative")
		}
		return *explicit, nil
	}
	price, err := s.oracle.Quote(ctx, asset)
	if err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("quote %s: %w", asset, err))
	}
	return price, nil
}

func (s *LedgerServiceImpl) balanceOf(w *domain.Wallet, asset string) decimal.Decimal {
	if asset == s.fiatAsset {
		return w.FiatBalance
	}
	pos, _ := w.Position(asset)
	return pos.Balance
}

func (s *LedgerServiceImpl) debit(w *domain.Wallet, asset string, amount decimal.Decimal) {
	if asset == s.fiatAsset {
		w.FiatBalance = w.FiatBalance.Sub(amount)
		return
	}
	w.Debit(asset, amount)
}

func (s *LedgerServiceImpl) credit(w *domain.Wallet, asset string, amount decimal.Decimal) {
	if asset == s.fiatAsset {
		w.FiatBalance = w.FiatBalance.Add(amount)
		return
	}
	w.Credit(asset, amount)
}

func (s *LedgerServiceImpl) notifyTransaction(ctx context.Context, userID uuid.UUID, txn *domain.Transaction) {
	payload := map[string]any{
		"tx_id":  txn.ID,
		"type":   string(txn.Type),
		"asset":  txn.Asset,
		"amount": txn.Amount.String(),
	}
	if txn.Counterparty != nil {
		payload["counterparty"] = *txn.Counterparty
	}
	s.notifier.Notify(ctx, userID, domain.EventTransaction, payload)
}
