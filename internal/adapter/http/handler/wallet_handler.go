package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet query endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

// GetWallet handles GET /api/v1/wallets/:user_id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}

	wallet, err := h.ledgerSvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallet(wallet))
}

// GetTotalValue handles GET /api/v1/wallets/:user_id/value.
func (h *WalletHandler) GetTotalValue(c *gin.Context) {
	userID, ok := subjectID(c)
	if !ok {
		return
	}

	total, err := h.ledgerSvc.GetTotalValue(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TotalValueResponse{TotalValue: total})
}

// subjectID resolves the :user_id path param and enforces that
// non-admin callers only read their own wallet. Writes an error response
// and returns false when the request must not proceed.
func subjectID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be a valid UUID"))
		return uuid.Nil, false
	}

	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	if caller != userID && !middleware.IsAdmin(c) {
		response.Error(c, apperror.ErrAdminOnly())
		return uuid.Nil, false
	}
	return userID, true
}
