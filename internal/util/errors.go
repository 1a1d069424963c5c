package util

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"credpay-wallet/internal/domain"
)

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrPinMismatch         = errors.New("incorrect wallet PIN")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrKarmaDenied         = errors.New("access denied: flagged karma identity")
	ErrSameWalletTransfer  = errors.New("cannot transfer to the same wallet")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenBlocked        = errors.New("token is blocklisted")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// InsufficientBalanceError is returned when a withdrawal or transfer is
// rejected for lack of funds. The attempt is still durably recorded; Record
// carries the persisted "failed" ledger entry so callers can show the user
// what was attempted.
type InsufficientBalanceError struct {
	Record        *domain.Transaction
	Balance       decimal.Decimal
	SenderName    string
	RecipientName string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s",
		e.Record.Amount.StringFixed(2), e.Balance.StringFixed(2))
}

// Unwrap makes errors.Is(err, ErrInsufficientBalance) hold.
func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
