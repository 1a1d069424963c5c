package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/service"
)

// TransactionHandler serves ledger lookups and listings.
type TransactionHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(ledger service.LedgerService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, logger: logger}
}

// GetTransaction handles GET /transactions/{transactionID}.
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	detail, err := h.ledger.GetTransaction(r.Context(), transactionID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	payload := map[string]interface{}{
		"sender_wallet_id":   detail.Sender.WalletID,
		"sender_name":        detail.Sender.OwnerName,
		"transaction_id":     detail.Record.TransactionID,
		"transaction_amount": detail.Record.Amount,
		"transaction_type":   detail.Record.Type,
		"transaction_status": detail.Record.Status,
		"transaction_date":   detail.Record.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if detail.Recipient != nil {
		payload["recipient_wallet_id"] = detail.Recipient.WalletID
		payload["recipient_name"] = detail.Recipient.OwnerName
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"data": payload})
}

// ListTransactions handles GET /wallets/{walletID}/transactions with optional
// type, status, date_start, date_end, order_by, order_direction and limit
// query parameters.
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	filter := repository.TransactionFilter{
		WalletID:  walletID,
		OrderBy:   r.URL.Query().Get("order_by"),
		OrderDesc: r.URL.Query().Get("order_direction") != "ASC",
	}

	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.TransactionType(v)
		filter.Type = &t
	}
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.TransactionStatus(v)
		filter.Status = &s
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("date_start"); v != "" {
		if start, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateStart = &start
		}
	}
	if v := r.URL.Query().Get("date_end"); v != "" {
		if end, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive through the end of the named day.
			endOfDay := end.Add(24*time.Hour - time.Nanosecond)
			filter.DateEnd = &endOfDay
		}
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if len(transactions) == 0 {
		respondWithJSON(w, h.logger, http.StatusOK, map[string]string{
			"message": "no transactions found for the specified criteria",
		})
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"data": transactions})
}
