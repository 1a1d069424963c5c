package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"credpay-wallet/internal/auth"
	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/service"
	"credpay-wallet/internal/util"
)

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Deposit(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*service.MovementResult, error) {
	args := m.Called(ctx, walletID, amount, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MovementResult), args.Error(1)
}

func (m *MockLedgerService) Withdraw(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*service.MovementResult, error) {
	args := m.Called(ctx, walletID, amount, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MovementResult), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, senderWalletID, recipientWalletID int64, amount decimal.Decimal, pin string) (*service.TransferResult, error) {
	args := m.Called(ctx, senderWalletID, recipientWalletID, amount, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResult), args.Error(1)
}

func (m *MockLedgerService) GetWalletInfo(ctx context.Context, walletID int64) (*domain.WalletInfo, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletInfo), args.Error(1)
}

func (m *MockLedgerService) GetWalletInfoByUserID(ctx context.Context, userID int64) (*domain.WalletInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletInfo), args.Error(1)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, transactionID string) (*service.TransactionDetail, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransactionDetail), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func newWalletTestRouter(ledger service.LedgerService) http.Handler {
	h := NewWalletHandler(ledger, util.DiscardLogger())
	r := chi.NewRouter()
	r.Get("/wallets/me", h.GetMyWallet)
	r.Get("/wallets/{walletID}", h.GetWalletInfo)
	r.Post("/wallets/{walletID}/deposit", h.Deposit)
	r.Post("/wallets/{walletID}/withdraw", h.Withdraw)
	r.Post("/transfers", h.Transfer)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWalletHandlerDeposit(t *testing.T) {
	amount := decimal.NewFromInt(50)

	t.Run("Success", func(t *testing.T) {
		ledger := new(MockLedgerService)
		record := &domain.Transaction{TransactionID: "TXN000000000000001"}
		ledger.On("Deposit", mock.Anything, int64(1234567890), amount, "4321").
			Return(&service.MovementResult{WalletID: 1234567890, Balance: amount, Record: record}, nil).Once()

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/wallets/1234567890/deposit",
			map[string]interface{}{"amount": "50", "wallet_pin": "4321"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "TXN000000000000001", body["transaction_id"])
		ledger.AssertExpectations(t)
	})

	t.Run("NonNumericWalletID", func(t *testing.T) {
		ledger := new(MockLedgerService)

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/wallets/abc/deposit",
			map[string]interface{}{"amount": "50", "wallet_pin": "4321"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingPin", func(t *testing.T) {
		ledger := new(MockLedgerService)

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/wallets/1234567890/deposit",
			map[string]interface{}{"amount": "50"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWalletHandlerWithdraw(t *testing.T) {
	t.Run("InsufficientBalanceReturns402WithRecord", func(t *testing.T) {
		ledger := new(MockLedgerService)
		record := &domain.Transaction{
			TransactionID: "TXN000000000000002",
			Type:          domain.TransactionTypeWithdrawal,
			Status:        domain.TransactionStatusFailed,
		}
		ledger.On("Withdraw", mock.Anything, int64(1234567890), decimal.NewFromInt(100), "4321").
			Return(nil, &util.InsufficientBalanceError{Record: record, Balance: decimal.NewFromInt(50)}).Once()

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/wallets/1234567890/withdraw",
			map[string]interface{}{"amount": "100", "wallet_pin": "4321"})

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		var body struct {
			Error   string             `json:"error"`
			Balance decimal.Decimal    `json:"balance"`
			Record  domain.Transaction `json:"record"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "insufficient balance", body.Error)
		assert.True(t, decimal.NewFromInt(50).Equal(body.Balance))
		assert.Equal(t, "TXN000000000000002", body.Record.TransactionID)
		assert.Equal(t, domain.TransactionStatusFailed, body.Record.Status)
	})

	t.Run("UnknownWalletReturns404", func(t *testing.T) {
		ledger := new(MockLedgerService)
		ledger.On("Withdraw", mock.Anything, int64(1234567890), decimal.NewFromInt(100), "4321").
			Return(nil, util.ErrWalletNotFound).Once()

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/wallets/1234567890/withdraw",
			map[string]interface{}{"amount": "100", "wallet_pin": "4321"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWalletHandlerTransfer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ledger := new(MockLedgerService)
		record := &domain.Transaction{TransactionID: "TXN000000000000003"}
		ledger.On("Transfer", mock.Anything, int64(1234567890), int64(9876543210), decimal.NewFromInt(20), "4321").
			Return(&service.TransferResult{
				SenderName:    "Ada",
				RecipientName: "Grace",
				SenderBalance: decimal.NewFromInt(80),
				Record:        record,
			}, nil).Once()

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/transfers", map[string]interface{}{
			"sender_wallet_id":    1234567890,
			"recipient_wallet_id": 9876543210,
			"amount":              "20",
			"wallet_pin":          "4321",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Ada", body["sender_name"])
		assert.Equal(t, "Grace", body["recipient_name"])
	})

	t.Run("SameWalletReturns400", func(t *testing.T) {
		ledger := new(MockLedgerService)
		ledger.On("Transfer", mock.Anything, int64(1234567890), int64(1234567890), decimal.NewFromInt(20), "4321").
			Return(nil, util.ErrSameWalletTransfer).Once()

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/transfers", map[string]interface{}{
			"sender_wallet_id":    1234567890,
			"recipient_wallet_id": 1234567890,
			"amount":              "20",
			"wallet_pin":          "4321",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadPinFormat", func(t *testing.T) {
		ledger := new(MockLedgerService)

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodPost, "/transfers", map[string]interface{}{
			"sender_wallet_id":    1234567890,
			"recipient_wallet_id": 9876543210,
			"amount":              "20",
			"wallet_pin":          "12ab",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWalletHandlerGetMyWallet(t *testing.T) {
	t.Run("ResolvesAuthenticatedCaller", func(t *testing.T) {
		ledger := new(MockLedgerService)
		ledger.On("GetWalletInfoByUserID", mock.Anything, int64(7)).
			Return(&domain.WalletInfo{WalletID: 1234567890, OwnerName: "Ada", Balance: decimal.NewFromInt(50)}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/wallets/me", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), 7))
		rec := httptest.NewRecorder()
		newWalletTestRouter(ledger).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data domain.WalletInfo `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(1234567890), body.Data.WalletID)
		ledger.AssertExpectations(t)
	})

	t.Run("MissingIdentityIsUnauthorized", func(t *testing.T) {
		ledger := new(MockLedgerService)

		rec := doJSON(t, newWalletTestRouter(ledger), http.MethodGet, "/wallets/me", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		ledger.AssertNotCalled(t, "GetWalletInfoByUserID", mock.Anything, mock.Anything)
	})
}

func TestWalletHandlerGetWalletInfo(t *testing.T) {
	ledger := new(MockLedgerService)
	ledger.On("GetWalletInfo", mock.Anything, int64(1234567890)).
		Return(&domain.WalletInfo{WalletID: 1234567890, OwnerName: "Ada", Balance: decimal.NewFromInt(50)}, nil).Once()

	rec := doJSON(t, newWalletTestRouter(ledger), http.MethodGet, "/wallets/1234567890", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data domain.WalletInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ada", body.Data.OwnerName)
}
