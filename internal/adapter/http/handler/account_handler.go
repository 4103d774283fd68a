package handler

import (
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account provisioning and token issuance.
type AccountHandler struct {
	accountSvc ports.AccountService
	tokenSvc   ports.TokenService
	admins     map[string]bool
}

// NewAccountHandler creates a new AccountHandler. adminUsernames lists
// the usernames whose tokens carry the admin claim.
func NewAccountHandler(accountSvc ports.AccountService, tokenSvc ports.TokenService, adminUsernames []string) *AccountHandler {
	admins := make(map[string]bool, len(adminUsernames))
	for _, u := range adminUsernames {
		admins[u] = true
	}
	return &AccountHandler{
		accountSvc: accountSvc,
		tokenSvc:   tokenSvc,
		admins:     admins,
	}
}

// CreateAccount handles POST /api/v1/accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.accountSvc.CreateAccount(c.Request.Context(), req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AccountResponse{
		UserID:    user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// IssueToken handles POST /api/v1/auth/token.
func (h *AccountHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.accountSvc.ResolveUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user == nil {
		response.Error(c, apperror.ErrNotFound("User"))
		return
	}

	token, expiry, err := h.tokenSvc.Generate(user.ID, h.admins[user.Username])
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, dto.TokenResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}
