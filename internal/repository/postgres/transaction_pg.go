package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/util"
)

const defaultListLimit = 20

// TransactionRepository implements repository.TransactionRepository for
// PostgreSQL. The transactions table is append-only.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// Append inserts a ledger record using the provided DBExecutor.
func (r *TransactionRepository) Append(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (transaction_id, wallet_id, recipient_wallet_id, amount, transaction_type, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.TransactionID,
		transaction.WalletID,
		transaction.RecipientWalletID,
		transaction.Amount,
		transaction.Type,
		transaction.Status,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction id %s: %w", transaction.TransactionID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// FindByTransactionID looks a record up by its external TXN identifier.
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, q repository.DBExecutor, transactionID string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT id, transaction_id, wallet_id, recipient_wallet_id, amount, transaction_type, status, created_at, updated_at
              FROM transactions WHERE transaction_id = $1`
	err := q.GetContext(ctx, &transaction, query, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &transaction, nil
}

// FindAll lists records for a wallet applying the optional filter fields.
func (r *TransactionRepository) FindAll(ctx context.Context, q repository.DBExecutor, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, transaction_id, wallet_id, recipient_wallet_id, amount, transaction_type, status, created_at, updated_at
                    FROM transactions WHERE wallet_id = $1`)
	args := []interface{}{filter.WalletID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		fmt.Fprintf(&sb, " AND transaction_type = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.DateStart != nil {
		args = append(args, *filter.DateStart)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if filter.DateEnd != nil {
		args = append(args, *filter.DateEnd)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}

	// Order column is whitelisted; it never comes from the query string raw.
	orderBy := "created_at"
	if filter.OrderBy == "amount" {
		orderBy = "amount"
	}
	direction := "ASC"
	if filter.OrderDesc {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", orderBy, direction)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	transactions := []domain.Transaction{}
	if err := q.SelectContext(ctx, &transactions, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %d: %w", filter.WalletID, err)
	}
	return transactions, nil
}
