package repository

import (
	"context"
	"time"

	"credpay-wallet/internal/domain"
)

// TransactionFilter narrows a ledger listing. WalletID is mandatory; the
// remaining fields are optional.
type TransactionFilter struct {
	WalletID  int64
	Type      *domain.TransactionType
	Status    *domain.TransactionStatus
	DateStart *time.Time
	DateEnd   *time.Time
	OrderBy   string // created_at or amount; defaults to created_at
	OrderDesc bool
	Limit     int // defaults to 20
}

// TransactionRepository defines the append-only ledger store. Records are
// never updated or deleted.
type TransactionRepository interface {
	// Append inserts a ledger record and fills in its generated row id.
	// Returns util.ErrDuplicateEntry on a transaction-id collision so the
	// engine can regenerate the id and retry.
	Append(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// FindByTransactionID looks a record up by its external TXN identifier.
	FindByTransactionID(ctx context.Context, q DBExecutor, transactionID string) (*domain.Transaction, error)
	// FindAll lists records for a wallet, newest first by default.
	FindAll(ctx context.Context, q DBExecutor, filter TransactionFilter) ([]domain.Transaction, error)
}
