package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/util"
)

// PinVerifier confirms that a plaintext PIN matches the credential stored for
// a wallet. The plaintext is never persisted or logged.
type PinVerifier interface {
	VerifyPin(ctx context.Context, walletID int64, pin string) error
}

// HashPin derives a one-way hash for a wallet PIN.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// HashPassword derives a one-way hash for a login password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword checks a plaintext password against its stored hash.
func ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return util.ErrInvalidCredentials
	}
	return nil
}

// bcryptPinVerifier loads the stored credential through the wallet repository
// and compares with bcrypt.
type bcryptPinVerifier struct {
	exec    repository.DBExecutor
	wallets repository.WalletRepository
}

// NewPinVerifier returns the bcrypt-backed PinVerifier used in production.
func NewPinVerifier(exec repository.DBExecutor, wallets repository.WalletRepository) PinVerifier {
	return &bcryptPinVerifier{exec: exec, wallets: wallets}
}

func (v *bcryptPinVerifier) VerifyPin(ctx context.Context, walletID int64, pin string) error {
	credential, err := v.wallets.GetCredential(ctx, v.exec, walletID)
	if err != nil {
		if errors.Is(err, util.ErrWalletNotFound) {
			return util.ErrWalletNotFound
		}
		return fmt.Errorf("failed to load wallet credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential), []byte(pin)); err != nil {
		return util.ErrPinMismatch
	}
	return nil
}
