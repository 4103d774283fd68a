package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PinHandler handles transfer PIN endpoints.
type PinHandler struct {
	pinSvc ports.PinService
}

// NewPinHandler creates a new PinHandler.
func NewPinHandler(pinSvc ports.PinService) *PinHandler {
	return &PinHandler{pinSvc: pinSvc}
}

// SetPin handles POST /api/v1/pin.
func (h *PinHandler) SetPin(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidPinFormat())
		return
	}

	if err := h.pinSvc.SetPin(c.Request.Context(), caller, req.Pin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "pin_set"})
}

// VerifyPin handles POST /api/v1/pin/verify.
func (h *PinHandler) VerifyPin(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.VerifyPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.pinSvc.Verify(c.Request.Context(), caller, req.Pin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "verified"})
}

// PinStatus handles GET /api/v1/pin/status.
func (h *PinHandler) PinStatus(c *gin.Context) {
	caller, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	configured, err := h.pinSvc.IsConfigured(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	mustSet, err := h.pinSvc.MustSetPin(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PinStatusResponse{
		Configured: configured,
		MustSetPin: mustSet,
	})
}
