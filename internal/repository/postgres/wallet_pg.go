package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/util"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateWallet inserts a new wallet using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, wallet_id, wallet_pin, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.UserID, wallet.WalletID, wallet.PINHash, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet id %d: %w", wallet.WalletID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByWalletID retrieves a wallet by its external 10-digit id.
func (r *WalletRepository) GetWalletByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, wallet_id, wallet_pin, balance, created_at, updated_at
              FROM wallets WHERE wallet_id = $1`
	err := q.GetContext(ctx, &wallet, query, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet %d: %w", walletID, err)
	}
	return &wallet, nil
}

// GetWalletInfoByWalletID returns the wallet id, balance and owner name.
func (r *WalletRepository) GetWalletInfoByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) (*domain.WalletInfo, error) {
	var info domain.WalletInfo
	query := `SELECT w.wallet_id, w.balance, u.name
              FROM wallets w JOIN users u ON u.id = w.user_id
              WHERE w.wallet_id = $1`
	err := q.GetContext(ctx, &info, query, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet info %d: %w", walletID, err)
	}
	return &info, nil
}

// GetWalletInfoByUserID returns the same projection looked up by owner.
func (r *WalletRepository) GetWalletInfoByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.WalletInfo, error) {
	var info domain.WalletInfo
	query := `SELECT w.wallet_id, w.balance, u.name
              FROM wallets w JOIN users u ON u.id = w.user_id
              WHERE w.user_id = $1`
	err := q.GetContext(ctx, &info, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet info for user %d: %w", userID, err)
	}
	return &info, nil
}

// WalletIDExists reports whether a wallet id is already assigned.
func (r *WalletRepository) WalletIDExists(ctx context.Context, q repository.DBExecutor, walletID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM wallets WHERE wallet_id = $1)`
	if err := q.GetContext(ctx, &exists, query, walletID); err != nil {
		return false, fmt.Errorf("failed to check wallet id %d: %w", walletID, err)
	}
	return exists, nil
}

// GetCredential returns the stored PIN hash for a wallet.
func (r *WalletRepository) GetCredential(ctx context.Context, q repository.DBExecutor, walletID int64) (string, error) {
	var pinHash string
	query := `SELECT wallet_pin FROM wallets WHERE wallet_id = $1`
	err := q.GetContext(ctx, &pinHash, query, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", util.ErrWalletNotFound
		}
		return "", fmt.Errorf("failed to get credential for wallet %d: %w", walletID, err)
	}
	return pinHash, nil
}

// AdjustBalance applies balance = balance ± amount as a single conditional
// statement and returns the new balance. The subtract form only matches rows
// holding at least the requested amount, so a sufficiency decision is never
// made from a previously read value.
func (r *WalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal, direction repository.BalanceDirection) (decimal.Decimal, error) {
	var (
		query      string
		newBalance decimal.Decimal
	)
	switch direction {
	case repository.BalanceAdd:
		query = `UPDATE wallets SET balance = balance + $1, updated_at = $2
                 WHERE wallet_id = $3 RETURNING balance`
	case repository.BalanceSubtract:
		query = `UPDATE wallets SET balance = balance - $1, updated_at = $2
                 WHERE wallet_id = $3 AND balance >= $1 RETURNING balance`
	default:
		return decimal.Zero, fmt.Errorf("unknown balance direction %q: %w", direction, util.ErrInvalidInput)
	}

	err := q.QueryRowContext(ctx, query, amount, time.Now().UTC(), walletID).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("failed to adjust balance for wallet %d: %w", walletID, err)
	}

	// No row matched: for a subtract that means either a missing wallet or
	// insufficient funds. Disambiguate with an existence probe.
	if direction == repository.BalanceSubtract {
		exists, probeErr := r.WalletIDExists(ctx, q, walletID)
		if probeErr != nil {
			return decimal.Zero, probeErr
		}
		if exists {
			return decimal.Zero, util.ErrInsufficientBalance
		}
	}
	return decimal.Zero, util.ErrWalletNotFound
}

// TransferBetween debits fromWalletID and credits toWalletID inside the
// caller's unit of work. Rows are touched in ascending wallet-id order so
// two opposing transfers between the same pair cannot deadlock.
func (r *WalletRepository) TransferBetween(ctx context.Context, q repository.DBExecutor, fromWalletID, toWalletID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	debit := func() (decimal.Decimal, error) {
		return r.AdjustBalance(ctx, q, fromWalletID, amount, repository.BalanceSubtract)
	}
	credit := func() error {
		_, err := r.AdjustBalance(ctx, q, toWalletID, amount, repository.BalanceAdd)
		return err
	}

	var senderBalance decimal.Decimal
	if fromWalletID < toWalletID {
		var err error
		if senderBalance, err = debit(); err != nil {
			return decimal.Zero, err
		}
		if err = credit(); err != nil {
			return decimal.Zero, err
		}
	} else {
		if err := credit(); err != nil {
			return decimal.Zero, err
		}
		var err error
		if senderBalance, err = debit(); err != nil {
			return decimal.Zero, err
		}
	}
	return senderBalance, nil
}
