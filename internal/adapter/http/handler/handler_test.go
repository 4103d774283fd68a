package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authedContext(w *httptest.ResponseRecorder, userID uuid.UUID, admin bool) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxAdmin, admin)
	return c, r
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Account Handler Tests ---

func TestCreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	mockToken := mocks.NewMockTokenService(ctrl)
	h := NewAccountHandler(mockAccount, mockToken, nil)

	userID := uuid.New()
	mockAccount.EXPECT().CreateAccount(gomock.Any(), "alice").Return(&domain.User{
		ID:        userID,
		Username:  "alice",
		CreatedAt: time.Now(),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Username: "alice"})

	h.CreateAccount(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, userID.String(), data["user_id"])
	assert.Equal(t, "alice", data["username"])
}

func TestCreateAccount_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAccountHandler(mocks.NewMockAccountService(ctrl), mocks.NewMockTokenService(ctrl), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/accounts", map[string]string{})

	h.CreateAccount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccount_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockAccount, mocks.NewMockTokenService(ctrl), nil)

	mockAccount.EXPECT().CreateAccount(gomock.Any(), "taken").Return(nil, apperror.ErrUsernameExists())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{Username: "taken"})

	h.CreateAccount(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIssueToken_AdminClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	mockToken := mocks.NewMockTokenService(ctrl)
	h := NewAccountHandler(mockAccount, mockToken, []string{"root"})

	userID := uuid.New()
	expiry := time.Now().Add(time.Hour)
	mockAccount.EXPECT().ResolveUsername(gomock.Any(), "root").Return(&domain.User{ID: userID, Username: "root"}, nil)
	mockToken.EXPECT().Generate(userID, true).Return("tok", expiry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/token", dto.TokenRequest{Username: "root"})

	h.IssueToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "tok", data["token"])
}

func TestIssueToken_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccount := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockAccount, mocks.NewMockTokenService(ctrl), nil)

	mockAccount.EXPECT().ResolveUsername(gomock.Any(), "ghost").Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/auth/token", dto.TokenRequest{Username: "ghost"})

	h.IssueToken(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetWallet_Own(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	wallet := domain.NewWallet(userID, time.Now())
	wallet.FiatBalance = decimal.RequireFromString("1000")
	mockLedger.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "1000", data["fiat_balance"])
}

func TestGetWallet_OtherUserForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), false)
	other := uuid.New()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+other.String(), nil)
	c.Params = gin.Params{{Key: "user_id", Value: other.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetWallet_AdminCanReadAny(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	target := uuid.New()
	mockLedger.EXPECT().GetWallet(gomock.Any(), target).Return(domain.NewWallet(target, time.Now()), nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), true)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+target.String(), nil)
	c.Params = gin.Params{{Key: "user_id", Value: target.String()}}

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTotalValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().GetTotalValue(gomock.Any(), userID).Return(decimal.RequireFromString("1450"), nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+userID.String()+"/value", nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}

	h.GetTotalValue(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "1450", data["total_value"])
}

// --- Ledger Handler Tests ---

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	amount := decimal.RequireFromString("250")
	mockLedger.EXPECT().AddMoney(gomock.Any(), userID, amount).Return(&domain.Transaction{
		ID:     1,
		UserID: userID,
		Type:   domain.TransactionTypeAddMoney,
		Asset:  "USD",
		Amount: amount,
		Status: domain.TransactionStatusCompleted,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/deposit", dto.DepositRequest{Amount: amount})

	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "add_money", data["type"])
	assert.Equal(t, "250", data["amount"])
}

func TestDeposit_InvalidAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().AddMoney(gomock.Any(), userID, gomock.Any()).Return(nil, apperror.ErrInvalidAmount())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/deposit", map[string]string{"amount": "-5"})

	h.Deposit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSend_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	senderID := uuid.New()
	amount := decimal.RequireFromString("100")
	pin := "1234"

	mockLedger.EXPECT().SendMoney(gomock.Any(), ports.SendRequest{
		SenderID:          senderID,
		RecipientUsername: "bob",
		Amount:            amount,
		Pin:               &pin,
	}).Return(&ports.SendResult{
		SendTx:    &domain.Transaction{ID: 10, UserID: senderID, Type: domain.TransactionTypeSend, Amount: amount, Status: domain.TransactionStatusCompleted},
		ReceiveTx: &domain.Transaction{ID: 11, Type: domain.TransactionTypeReceive, Amount: amount, Status: domain.TransactionStatusCompleted},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, senderID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/send", dto.SendRequest{
		RecipientUsername: "bob",
		Amount:            amount,
		Pin:               &pin,
	})

	h.Send(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	sendTx := data["send_transaction"].(map[string]interface{})
	recvTx := data["receive_transaction"].(map[string]interface{})
	assert.Equal(t, float64(10), sendTx["id"])
	assert.Equal(t, float64(11), recvTx["id"])
}

func TestSend_WrongPin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	senderID := uuid.New()
	mockLedger.EXPECT().SendMoney(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidPin())

	pin := "9999"
	w := httptest.NewRecorder()
	c, _ := authedContext(w, senderID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/send", dto.SendRequest{
		RecipientUsername: "bob",
		Amount:            decimal.RequireFromString("100"),
		Pin:               &pin,
	})

	h.Send(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PIN_002", resp["error_code"])
}

func TestBuy_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	amount := decimal.RequireFromString("0.01")
	mockLedger.EXPECT().BuyAsset(gomock.Any(), ports.TradeRequest{
		UserID: userID,
		Asset:  "BTC",
		Amount: amount,
	}).Return(&domain.Transaction{
		ID:     5,
		UserID: userID,
		Type:   domain.TransactionTypeBuy,
		Asset:  "BTC",
		Amount: amount,
		Status: domain.TransactionStatusCompleted,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/buy", dto.TradeRequest{Asset: "BTC", Amount: amount})

	h.Buy(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "buy", data["type"])
}

func TestSell_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().SellAsset(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/sell", dto.TradeRequest{
		Asset:  "BTC",
		Amount: decimal.RequireFromString("5"),
	})

	h.Sell(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSwap_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	amount := decimal.RequireFromString("1")
	mockLedger.EXPECT().SwapAssets(gomock.Any(), ports.SwapRequest{
		UserID:    userID,
		FromAsset: "ETH",
		ToAsset:   "BTC",
		Amount:    amount,
	}).Return(&domain.Transaction{
		ID:     7,
		UserID: userID,
		Type:   domain.TransactionTypeSwap,
		Asset:  "ETH",
		Amount: amount,
		Status: domain.TransactionStatusCompleted,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/ledger/swap", dto.SwapRequest{
		FromAsset: "ETH",
		ToAsset:   "BTC",
		Amount:    amount,
	})

	h.Swap(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListTransactions_ScopedToCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().GetHistory(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			require.NotNil(t, params.UserID)
			assert.Equal(t, userID, *params.UserID)
			return []domain.Transaction{}, 0, nil
		})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?user_id="+uuid.NewString(), nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListTransactions_AdminFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	target := uuid.New()
	mockLedger.EXPECT().GetHistory(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			require.NotNil(t, params.UserID)
			assert.Equal(t, target, *params.UserID)
			return []domain.Transaction{{ID: 1, UserID: target, Type: domain.TransactionTypeBuy, Status: domain.TransactionStatusCompleted}}, 1, nil
		})

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), true)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?user_id="+target.String(), nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- PIN Handler Tests ---

func TestSetPin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewPinHandler(mockPin)

	userID := uuid.New()
	mockPin.EXPECT().SetPin(gomock.Any(), userID, "1234").Return(nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/pin", dto.SetPinRequest{Pin: "1234"})

	h.SetPin(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetPin_BadFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewPinHandler(mocks.NewMockPinService(ctrl))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/pin", map[string]string{"pin": "12ab"})

	h.SetPin(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VAL_003", resp["error_code"])
}

func TestVerifyPin_NotSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewPinHandler(mockPin)

	userID := uuid.New()
	mockPin.EXPECT().Verify(gomock.Any(), userID, "1234").Return(apperror.ErrPinNotSet())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/pin/verify", dto.VerifyPinRequest{Pin: "1234"})

	h.VerifyPin(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPinStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewPinHandler(mockPin)

	userID := uuid.New()
	mockPin.EXPECT().IsConfigured(gomock.Any(), userID).Return(false, nil)
	mockPin.EXPECT().MustSetPin(gomock.Any(), userID).Return(true, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, false)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/pin/status", nil)

	h.PinStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, false, data["configured"])
	assert.Equal(t, true, data["must_set_pin"])
}

// --- Admin Handler Tests ---

func TestAdminSetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewAdminHandler(mockLedger, mocks.NewMockPinService(ctrl))

	adminID := uuid.New()
	target := uuid.New()
	balance := decimal.RequireFromString("5000")
	mockLedger.EXPECT().AdminSetBalance(gomock.Any(), adminID, target, "BTC", balance).Return(nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, adminID, true)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/admin/balance", dto.AdminSetBalanceRequest{
		UserID:  target.String(),
		Asset:   "BTC",
		Balance: balance,
	})

	h.SetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminResetPin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPin := mocks.NewMockPinService(ctrl)
	h := NewAdminHandler(mocks.NewMockLedgerService(ctrl), mockPin)

	adminID := uuid.New()
	target := uuid.New()
	mockPin.EXPECT().Reset(gomock.Any(), target, adminID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, adminID, true)
	c.Request = jsonRequest(t, http.MethodPost, "/api/v1/admin/pin/reset", dto.AdminPinResetRequest{UserID: target.String()})

	h.ResetPin(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Router wiring ---

func TestRouter_AdminRouteRejectsNonAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockToken := mocks.NewMockTokenService(ctrl)
	mockToken.EXPECT().Validate("user-token").Return(&ports.TokenClaims{UserID: uuid.New(), Admin: false}, nil)

	r := SetupRouter(RouterDeps{
		AccountSvc: mocks.NewMockAccountService(ctrl),
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		PinSvc:     mocks.NewMockPinService(ctrl),
		TokenSvc:   mockToken,
	})

	req := jsonRequest(t, http.MethodPost, "/api/v1/admin/pin/reset", dto.AdminPinResetRequest{UserID: uuid.NewString()})
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_MissingTokenRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(RouterDeps{
		AccountSvc: mocks.NewMockAccountService(ctrl),
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		PinSvc:     mocks.NewMockPinService(ctrl),
		TokenSvc:   mocks.NewMockTokenService(ctrl),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
