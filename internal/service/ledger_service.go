package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"credpay-wallet/internal/auth"
	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/util"
	"credpay-wallet/pkg/db"
)

// Amount bounds for a single money movement, in currency units.
var (
	minAmount = decimal.NewFromInt(10)
	maxAmount = decimal.NewFromInt(1_000_000)
)

// maxIDAttempts bounds regeneration when a generated transaction id collides.
const maxIDAttempts = 5

// DefaultTxTimeout bounds each unit of work unless configured otherwise.
const DefaultTxTimeout = 5 * time.Second

// MovementResult is the outcome of a successful deposit or withdrawal.
type MovementResult struct {
	WalletID int64               `json:"wallet_id"`
	Balance  decimal.Decimal     `json:"balance"`
	Record   *domain.Transaction `json:"record"`
}

// TransferResult is the outcome of a successful transfer. It carries both
// parties' display names alongside the sender's new balance.
type TransferResult struct {
	SenderWalletID    int64               `json:"sender_wallet_id"`
	RecipientWalletID int64               `json:"recipient_wallet_id"`
	SenderName        string              `json:"sender_name"`
	RecipientName     string              `json:"recipient_name"`
	SenderBalance     decimal.Decimal     `json:"sender_balance"`
	Record            *domain.Transaction `json:"record"`
}

// TransactionDetail is a ledger record enriched with party information.
type TransactionDetail struct {
	Record    *domain.Transaction `json:"record"`
	Sender    *domain.WalletInfo  `json:"sender"`
	Recipient *domain.WalletInfo  `json:"recipient,omitempty"`
}

// LedgerService is the wallet ledger engine. Each money movement follows the
// same shape: validate, authorize, mutate atomically, record, respond. Every
// authorized attempt leaves exactly one ledger record, whether or not the
// movement succeeds.
type LedgerService interface {
	Deposit(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*MovementResult, error)
	Withdraw(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*MovementResult, error)
	Transfer(ctx context.Context, senderWalletID, recipientWalletID int64, amount decimal.Decimal, pin string) (*TransferResult, error)
	GetWalletInfo(ctx context.Context, walletID int64) (*domain.WalletInfo, error)
	GetWalletInfoByUserID(ctx context.Context, userID int64) (*domain.WalletInfo, error)
	GetTransaction(ctx context.Context, transactionID string) (*TransactionDetail, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error)
}

type ledgerService struct {
	dbBeginner       db.DBTxBeginner
	dbExecutor       repository.DBExecutor
	walletRepo       repository.WalletRepository
	transactionRepo  repository.TransactionRepository
	pinVerifier      auth.PinVerifier
	beginTx          db.BeginTxFunc
	commitTx         db.CommitTxFunc
	rollbackTx       db.RollbackTxFunc
	newTransactionID func() string
	txTimeout        time.Duration
}

// NewLedgerService creates the ledger engine. newTransactionID supplies
// candidate TXN identifiers; txTimeout bounds each unit of work (pass 0 for
// the default).
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	pinVerifier auth.PinVerifier,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	newTransactionID func() string,
	txTimeout time.Duration,
) LedgerService {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &ledgerService{
		dbBeginner:       dbBeginner,
		dbExecutor:       dbExecutor,
		walletRepo:       walletRepo,
		transactionRepo:  transactionRepo,
		pinVerifier:      pinVerifier,
		beginTx:          beginTx,
		commitTx:         commitTx,
		rollbackTx:       rollbackTx,
		newTransactionID: newTransactionID,
		txTimeout:        txTimeout,
	}
}

// validateAmount enforces the allowed range and minor-unit precision.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(minAmount) {
		return fmt.Errorf("amount must be at least %s: %w", minAmount, util.ErrInvalidInput)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount must not exceed %s: %w", maxAmount, util.ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount must have at most 2 decimal places: %w", util.ErrInvalidInput)
	}
	return nil
}

// appendWithFreshID appends a ledger record, regenerating the transaction id
// on a uniqueness conflict. The id is a display code, so a collision simply
// means drawing again. A unique violation aborts the surrounding Postgres
// transaction, so every insert attempt runs under a savepoint that is rolled
// back before the retry.
func (s *ledgerService) appendWithFreshID(ctx context.Context, q repository.DBExecutor, record *domain.Transaction) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if _, err := q.ExecContext(ctx, "SAVEPOINT ledger_append"); err != nil {
			return fmt.Errorf("failed to set savepoint: %w", err)
		}
		err := s.transactionRepo.Append(ctx, q, record)
		if err == nil {
			if _, err := q.ExecContext(ctx, "RELEASE SAVEPOINT ledger_append"); err != nil {
				return fmt.Errorf("failed to release savepoint: %w", err)
			}
			return nil
		}
		if !errors.Is(err, util.ErrDuplicateEntry) {
			return err
		}
		if _, rbErr := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT ledger_append"); rbErr != nil {
			return fmt.Errorf("failed to roll back to savepoint: %w", rbErr)
		}
		record.TransactionID = s.newTransactionID()
	}
	return fmt.Errorf("exhausted %d transaction id attempts: %w", maxIDAttempts, util.ErrDuplicateEntry)
}

// recordFailedAttempt durably persists a failed ledger record in its own unit
// of work, so it survives even though the parent operation is rejected.
func (s *ledgerService) recordFailedAttempt(ctx context.Context, record *domain.Transaction) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for failed record: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return errors.New("transaction controller does not implement DBExecutor")
	}
	if err := s.appendWithFreshID(ctx, txExecutor, record); err != nil {
		return err
	}
	return s.commitTx(txController)
}

// Deposit credits a wallet. Validation or PIN failure aborts before any
// mutation or ledger write; a missing wallet likewise leaves no record.
func (s *ledgerService) Deposit(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*MovementResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.pinVerifier.VerifyPin(ctx, walletID, pin); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, errors.New("deposit: transaction controller does not implement DBExecutor")
	}

	newBalance, err := s.walletRepo.AdjustBalance(ctx, txExecutor, walletID, amount, repository.BalanceAdd)
	if err != nil {
		return nil, fmt.Errorf("deposit: wallet %d: %w", walletID, err)
	}

	record := domain.NewTransaction(s.newTransactionID(), walletID, nil, amount,
		domain.TransactionTypeDeposit, domain.TransactionStatusSuccess)
	if err := s.appendWithFreshID(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("deposit: failed to append ledger record: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	return &MovementResult{WalletID: walletID, Balance: newBalance, Record: record}, nil
}

// Withdraw debits a wallet. The debit is a guarded single statement, so two
// concurrent withdrawals can never drive the balance negative; an
// insufficient-funds rejection still commits a "failed" ledger record and the
// returned error carries it.
func (s *ledgerService) Withdraw(ctx context.Context, walletID int64, amount decimal.Decimal, pin string) (*MovementResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.pinVerifier.VerifyPin(ctx, walletID, pin); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("withdraw: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, errors.New("withdraw: transaction controller does not implement DBExecutor")
	}

	newBalance, err := s.walletRepo.AdjustBalance(ctx, txExecutor, walletID, amount, repository.BalanceSubtract)
	switch {
	case err == nil:
		// fallthrough to the success record below
	case errors.Is(err, util.ErrInsufficientBalance):
		// The guarded debit matched no row, so nothing has been written yet:
		// the failed record can be committed inside this same unit of work.
		info, infoErr := s.walletRepo.GetWalletInfoByWalletID(ctx, txExecutor, walletID)
		if infoErr != nil {
			return nil, fmt.Errorf("withdraw: failed to load wallet info: %w", infoErr)
		}
		record := domain.NewTransaction(s.newTransactionID(), walletID, nil, amount,
			domain.TransactionTypeWithdrawal, domain.TransactionStatusFailed)
		if recErr := s.appendWithFreshID(ctx, txExecutor, record); recErr != nil {
			return nil, fmt.Errorf("withdraw: failed to append failed-attempt record: %w", recErr)
		}
		if commitErr := s.commitTx(txController); commitErr != nil {
			return nil, fmt.Errorf("withdraw: failed to commit failed-attempt record: %w", commitErr)
		}
		return nil, &util.InsufficientBalanceError{
			Record:     record,
			Balance:    info.Balance,
			SenderName: info.OwnerName,
		}
	default:
		return nil, fmt.Errorf("withdraw: wallet %d: %w", walletID, err)
	}

	record := domain.NewTransaction(s.newTransactionID(), walletID, nil, amount,
		domain.TransactionTypeWithdrawal, domain.TransactionStatusSuccess)
	if err := s.appendWithFreshID(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("withdraw: failed to append ledger record: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("withdraw: failed to commit transaction: %w", err)
	}

	return &MovementResult{WalletID: walletID, Balance: newBalance, Record: record}, nil
}

// Transfer moves funds between two wallets. The PIN is verified against the
// sender's wallet. A missing party fails before any mutation with no ledger
// record; an insufficient balance is recorded as a failed transfer attempt.
func (s *ledgerService) Transfer(ctx context.Context, senderWalletID, recipientWalletID int64, amount decimal.Decimal, pin string) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if senderWalletID == recipientWalletID {
		return nil, util.ErrSameWalletTransfer
	}
	if err := s.pinVerifier.VerifyPin(ctx, senderWalletID, pin); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, errors.New("transfer: transaction controller does not implement DBExecutor")
	}

	senderInfo, err := s.walletRepo.GetWalletInfoByWalletID(ctx, txExecutor, senderWalletID)
	if err != nil {
		return nil, fmt.Errorf("transfer: sender wallet %d: %w", senderWalletID, err)
	}
	recipientInfo, err := s.walletRepo.GetWalletInfoByWalletID(ctx, txExecutor, recipientWalletID)
	if err != nil {
		return nil, fmt.Errorf("transfer: recipient wallet %d: %w", recipientWalletID, err)
	}

	senderBalance, err := s.walletRepo.TransferBetween(ctx, txExecutor, senderWalletID, recipientWalletID, amount)
	if err != nil {
		if !errors.Is(err, util.ErrInsufficientBalance) {
			return nil, fmt.Errorf("transfer: %w", err)
		}
		// The unit of work may already hold the recipient credit, so discard
		// it entirely and persist the failed attempt in a fresh one.
		s.rollbackTx(txController)
		record := domain.NewTransaction(s.newTransactionID(), senderWalletID, &recipientWalletID, amount,
			domain.TransactionTypeTransfer, domain.TransactionStatusFailed)
		if recErr := s.recordFailedAttempt(ctx, record); recErr != nil {
			return nil, fmt.Errorf("transfer: failed to append failed-attempt record: %w", recErr)
		}
		return nil, &util.InsufficientBalanceError{
			Record:        record,
			Balance:       senderInfo.Balance,
			SenderName:    senderInfo.OwnerName,
			RecipientName: recipientInfo.OwnerName,
		}
	}

	record := domain.NewTransaction(s.newTransactionID(), senderWalletID, &recipientWalletID, amount,
		domain.TransactionTypeTransfer, domain.TransactionStatusSuccess)
	if err := s.appendWithFreshID(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("transfer: failed to append ledger record: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return &TransferResult{
		SenderWalletID:    senderWalletID,
		RecipientWalletID: recipientWalletID,
		SenderName:        senderInfo.OwnerName,
		RecipientName:     recipientInfo.OwnerName,
		SenderBalance:     senderBalance,
		Record:            record,
	}, nil
}

// GetWalletInfo is a pure read with no side effects.
func (s *ledgerService) GetWalletInfo(ctx context.Context, walletID int64) (*domain.WalletInfo, error) {
	info, err := s.walletRepo.GetWalletInfoByWalletID(ctx, s.dbExecutor, walletID)
	if err != nil {
		return nil, fmt.Errorf("get wallet info: wallet %d: %w", walletID, err)
	}
	return info, nil
}

// GetWalletInfoByUserID resolves the caller's own wallet.
func (s *ledgerService) GetWalletInfoByUserID(ctx context.Context, userID int64) (*domain.WalletInfo, error) {
	info, err := s.walletRepo.GetWalletInfoByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet info: user %d: %w", userID, err)
	}
	return info, nil
}

// GetTransaction returns a ledger record enriched with both parties' wallet
// info when the record is a transfer.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*TransactionDetail, error) {
	record, err := s.transactionRepo.FindByTransactionID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", transactionID, err)
	}

	sender, err := s.walletRepo.GetWalletInfoByWalletID(ctx, s.dbExecutor, record.WalletID)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: sender wallet: %w", transactionID, err)
	}

	detail := &TransactionDetail{Record: record, Sender: sender}
	if record.RecipientWalletID != nil {
		recipient, err := s.walletRepo.GetWalletInfoByWalletID(ctx, s.dbExecutor, *record.RecipientWalletID)
		if err != nil {
			return nil, fmt.Errorf("get transaction %s: recipient wallet: %w", transactionID, err)
		}
		detail.Recipient = recipient
	}
	return detail, nil
}

// ListTransactions lists a wallet's ledger records applying the filter.
func (s *ledgerService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	if _, err := s.walletRepo.GetWalletInfoByWalletID(ctx, s.dbExecutor, filter.WalletID); err != nil {
		return nil, fmt.Errorf("list transactions: wallet %d: %w", filter.WalletID, err)
	}
	transactions, err := s.transactionRepo.FindAll(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}
