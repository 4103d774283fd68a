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

// AdminHandler handles administrative override endpoints. Routes using
// it must be guarded by middleware.AdminOnly.
type AdminHandler struct {
	ledgerSvc ports.LedgerService
	pinSvc    ports.PinService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledgerSvc ports.LedgerService, pinSvc ports.PinService) *AdminHandler {
	return &AdminHandler{ledgerSvc: ledgerSvc, pinSvc: pinSvc}
}

// SetBalance handles POST /api/v1/admin/balance. The override bypasses
// the ledger and is recorded in the audit log only.
func (h *AdminHandler) SetBalance(c *gin.Context) {
	adminID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AdminSetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be a valid UUID"))
		return
	}

	if err := h.ledgerSvc.AdminSetBalance(c.Request.Context(), adminID, userID, req.Asset, req.Balance); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "balance_set"})
}

// ResetPin handles POST /api/v1/admin/pin/reset.
func (h *AdminHandler) ResetPin(c *gin.Context) {
	adminID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AdminPinResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be a valid UUID"))
		return
	}

	if err := h.pinSvc.Reset(c.Request.Context(), userID, adminID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "pin_reset"})
}
