package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"credpay-wallet/internal/domain"
)

// BalanceDirection selects whether AdjustBalance credits or debits a wallet.
type BalanceDirection string

const (
	BalanceAdd      BalanceDirection = "add"
	BalanceSubtract BalanceDirection = "subtract"
)

// WalletRepository defines the account-store operations. Every write accepts
// the caller's DBExecutor so it participates in the caller's unit of work.
type WalletRepository interface {
	// CreateWallet inserts a new wallet with its balance defaulting to zero.
	// Returns util.ErrDuplicateEntry when the wallet id already exists so the
	// caller can regenerate and retry.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByWalletID retrieves the full wallet row by its external id.
	GetWalletByWalletID(ctx context.Context, q DBExecutor, walletID int64) (*domain.Wallet, error)
	// GetWalletInfoByWalletID returns the wallet id, balance and owner name.
	GetWalletInfoByWalletID(ctx context.Context, q DBExecutor, walletID int64) (*domain.WalletInfo, error)
	// GetWalletInfoByUserID returns the same projection looked up by owner.
	GetWalletInfoByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.WalletInfo, error)
	// WalletIDExists reports whether a wallet id is already assigned.
	WalletIDExists(ctx context.Context, q DBExecutor, walletID int64) (bool, error)
	// AdjustBalance applies balance = balance ± amount as one conditional
	// statement and returns the new balance. A subtract only matches rows
	// with balance >= amount; when no row matches, the error distinguishes
	// a missing wallet (util.ErrWalletNotFound) from insufficient funds
	// (util.ErrInsufficientBalance).
	AdjustBalance(ctx context.Context, q DBExecutor, walletID int64, amount decimal.Decimal, direction BalanceDirection) (decimal.Decimal, error)
	// TransferBetween debits from and credits to inside the caller's unit of
	// work, touching rows in ascending wallet-id order. Returns the sender's
	// new balance. The debit uses the guarded form of AdjustBalance.
	TransferBetween(ctx context.Context, q DBExecutor, fromWalletID, toWalletID int64, amount decimal.Decimal) (decimal.Decimal, error)
	// GetCredential returns the stored PIN hash for a wallet.
	GetCredential(ctx context.Context, q DBExecutor, walletID int64) (string, error)
}
