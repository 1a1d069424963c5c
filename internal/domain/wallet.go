package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a balance-holding account owned by exactly one user. The
// WalletID is the external 10-digit identifier; ID is the surrogate key.
type Wallet struct {
	ID        int64           `db:"id" json:"-"`
	UserID    int64           `db:"user_id" json:"user_id"`
	WalletID  int64           `db:"wallet_id" json:"wallet_id"`
	PINHash   string          `db:"wallet_pin" json:"-"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a wallet for a user with a zero balance.
func NewWallet(userID, walletID int64, pinHash string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,
		WalletID:  walletID,
		PINHash:   pinHash,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WalletInfo is the read-only projection returned to callers: the wallet
// identifier, its balance and the owner's display name.
type WalletInfo struct {
	WalletID  int64           `db:"wallet_id" json:"wallet_id"`
	OwnerName string          `db:"name" json:"owner_name"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
}
