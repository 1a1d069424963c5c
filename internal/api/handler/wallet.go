package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"credpay-wallet/internal/auth"
	"credpay-wallet/internal/service"
	"credpay-wallet/internal/util"
)

// WalletHandler handles money-movement and wallet-info requests.
type WalletHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(ledger service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{ledger: ledger, logger: logger}
}

func walletIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "walletID"), 10, 64)
	if err != nil {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// MovementRequest is the payload for deposits and withdrawals.
type MovementRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	WalletPin string          `json:"wallet_pin" validate:"required,len=4,numeric"`
}

// Deposit handles POST /wallets/{walletID}/deposit.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithValidationErrors(w, h.logger, validationMessages(err))
		return
	}

	result, err := h.ledger.Deposit(r.Context(), walletID, req.Amount, req.WalletPin)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":        "deposit successful",
		"wallet_id":      result.WalletID,
		"balance":        result.Balance,
		"transaction_id": result.Record.TransactionID,
		"record":         result.Record,
	})
}

// Withdraw handles POST /wallets/{walletID}/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithValidationErrors(w, h.logger, validationMessages(err))
		return
	}

	result, err := h.ledger.Withdraw(r.Context(), walletID, req.Amount, req.WalletPin)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":        "withdrawal successful",
		"wallet_id":      result.WalletID,
		"balance":        result.Balance,
		"transaction_id": result.Record.TransactionID,
		"record":         result.Record,
	})
}

// TransferRequest is the payload for transfers.
type TransferRequest struct {
	SenderWalletID    int64           `json:"sender_wallet_id" validate:"required"`
	RecipientWalletID int64           `json:"recipient_wallet_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
	WalletPin         string          `json:"wallet_pin" validate:"required,len=4,numeric"`
}

// Transfer handles POST /transfers.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithValidationErrors(w, h.logger, validationMessages(err))
		return
	}

	result, err := h.ledger.Transfer(r.Context(), req.SenderWalletID, req.RecipientWalletID, req.Amount, req.WalletPin)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":        "transfer successful",
		"sender_name":    result.SenderName,
		"recipient_name": result.RecipientName,
		"sender_balance": result.SenderBalance,
		"transaction_id": result.Record.TransactionID,
		"record":         result.Record,
	})
}

// GetMyWallet handles GET /wallets/me, resolving the wallet owned by the
// authenticated caller.
func (h *WalletHandler) GetMyWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, h.logger, util.ErrTokenInvalid)
		return
	}

	info, err := h.ledger.GetWalletInfoByUserID(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"data": info})
}

// GetWalletInfo handles GET /wallets/{walletID}.
func (h *WalletHandler) GetWalletInfo(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	info, err := h.ledger.GetWalletInfo(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"data": info})
}
