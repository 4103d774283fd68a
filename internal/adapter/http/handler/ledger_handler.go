package handler

import (
	"context"
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles the value-moving endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/ledger/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledgerSvc.AddMoney(c.Request.Context(), caller, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// Receive handles POST /api/v1/ledger/receive.
func (h *LedgerHandler) Receive(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.ReceiveMoney(c.Request.Context(), caller, req.Amount, req.Asset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// Send handles POST /api/v1/ledger/send.
func (h *LedgerHandler) Send(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.SendMoney(c.Request.Context(), ports.SendRequest{
		SenderID:          caller,
		RecipientUsername: req.RecipientUsername,
		Amount:            req.Amount,
		Asset:             req.Asset,
		Pin:               req.Pin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SendResponse{
		SendTransaction:    dto.FromTransaction(result.SendTx),
		ReceiveTransaction: dto.FromTransaction(result.ReceiveTx),
	})
}

// Buy handles POST /api/v1/ledger/buy.
func (h *LedgerHandler) Buy(c *gin.Context) {
	h.trade(c, h.ledgerSvc.BuyAsset)
}

// Sell handles POST /api/v1/ledger/sell.
func (h *LedgerHandler) Sell(c *gin.Context) {
	h.trade(c, h.ledgerSvc.SellAsset)
}

// Swap handles POST /api/v1/ledger/swap.
func (h *LedgerHandler) Swap(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.SwapAssets(c.Request.Context(), ports.SwapRequest{
		UserID:    caller,
		FromAsset: req.FromAsset,
		ToAsset:   req.ToAsset,
		Amount:    req.Amount,
		Pin:       req.Pin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// ListTransactions handles GET /api/v1/transactions. Non-admin callers
// see only their own entries; admins may filter by any user_id or list
// all entries.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.TransactionListParams{
		Page:     parseIntDefault(c.Query("page"), 1),
		PageSize: parseIntDefault(c.Query("page_size"), 20),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	if middleware.IsAdmin(c) {
		if raw := c.Query("user_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(c, apperror.Validation("user_id must be a valid UUID"))
				return
			}
			params.UserID = &id
		}
	} else {
		params.UserID = &caller
	}

	if raw := c.Query("type"); raw != "" {
		tt := domain.TransactionType(raw)
		params.Type = &tt
	}
	if raw := c.Query("asset"); raw != "" {
		params.Asset = &raw
	}

	txns, total, err := h.ledgerSvc.GetHistory(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.FromTransaction(&txns[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Transactions: items,
		Pagination: dto.Pagination{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *LedgerHandler) trade(c *gin.Context, exec func(ctx context.Context, req ports.TradeRequest) (*domain.Transaction, error)) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := exec(c.Request.Context(), ports.TradeRequest{
		UserID: caller,
		Asset:  req.Asset,
		Amount: req.Amount,
		Price:  req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
