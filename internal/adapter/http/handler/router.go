package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	LedgerSvc      ports.LedgerService
	PinSvc         ports.PinService
	TokenSvc       ports.TokenService
	AdminUsernames []string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, verifies PostgreSQL and Redis connectivity
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	accountHandler := NewAccountHandler(deps.AccountSvc, deps.TokenSvc, deps.AdminUsernames)
	v1.POST("/accounts", rl("accounts"), accountHandler.CreateAccount)
	v1.POST("/auth/token", rl("auth_token"), accountHandler.IssueToken)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	walletHandler := NewWalletHandler(deps.LedgerSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/:user_id", rl("wallet"), walletHandler.GetWallet)
		wallets.GET("/:user_id/value", rl("wallet"), walletHandler.GetTotalValue)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	ledger := v1.Group("/ledger", jwtAuth)
	{
		ledger.POST("/deposit", rl("ledger"), ledgerHandler.Deposit)
		ledger.POST("/receive", rl("ledger"), ledgerHandler.Receive)
		ledger.POST("/send", rl("ledger"), ledgerHandler.Send)
		ledger.POST("/buy", rl("ledger"), ledgerHandler.Buy)
		ledger.POST("/sell", rl("ledger"), ledgerHandler.Sell)
		ledger.POST("/swap", rl("ledger"), ledgerHandler.Swap)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("wallet"), ledgerHandler.ListTransactions)
	}

	pinHandler := NewPinHandler(deps.PinSvc)
	pin := v1.Group("/pin", jwtAuth)
	{
		pin.POST("", rl("pin"), pinHandler.SetPin)
		pin.POST("/verify", rl("pin"), pinHandler.VerifyPin)
		pin.GET("/status", rl("pin"), pinHandler.PinStatus)
	}

	// --- Admin routes (JWT + admin claim) ---
	adminHandler := NewAdminHandler(deps.LedgerSvc, deps.PinSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.AdminOnly())
	{
		admin.POST("/balance", rl("admin"), adminHandler.SetBalance)
		admin.POST("/pin/reset", rl("admin"), adminHandler.ResetPin)
	}

	return r
}
