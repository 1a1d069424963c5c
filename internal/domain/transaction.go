package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// TransactionStatus defines the outcome of a money movement attempt.
// Only "success" and "failed" are produced by the ledger engine; the
// remaining values exist in the schema for forward compatibility.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusReversed  TransactionStatus = "reversed"
	TransactionStatusScheduled TransactionStatus = "scheduled"
)

// Transaction is an immutable ledger record describing one attempted money
// movement. The amount is always the positive magnitude requested; the type
// and primary wallet determine its direction. A transfer is a single record
// keyed to the sender with the recipient referenced.
type Transaction struct {
	ID                int64             `db:"id" json:"-"`
	TransactionID     string            `db:"transaction_id" json:"transaction_id"`
	WalletID          int64             `db:"wallet_id" json:"wallet_id"`
	RecipientWalletID *int64            `db:"recipient_wallet_id" json:"recipient_wallet_id,omitempty"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	Type              TransactionType   `db:"transaction_type" json:"transaction_type"`
	Status            TransactionStatus `db:"status" json:"status"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// NewTransaction creates a ledger record ready to be appended.
func NewTransaction(
	transactionID string,
	walletID int64,
	recipientWalletID *int64,
	amount decimal.Decimal,
	txType TransactionType,
	status TransactionStatus,
) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		TransactionID:     transactionID,
		WalletID:          walletID,
		RecipientWalletID: recipientWalletID,
		Amount:            amount,
		Type:              txType,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
