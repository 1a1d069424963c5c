package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credpay-wallet/internal/auth"
	"credpay-wallet/internal/domain"
	"credpay-wallet/internal/idgen"
	"credpay-wallet/internal/karma"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/util"
	"credpay-wallet/pkg/db"
)

// maxRegisterAttempts bounds registration retries when the generated wallet
// id collides with an existing one. The UNIQUE constraint is authoritative; a
// conflicting insert aborts the whole unit of work, so the retry restarts it.
const maxRegisterAttempts = 3

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	WalletPin   string
}

// UserService manages account lifecycle: registration (user + wallet in one
// unit of work), login and logout.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (walletID int64, err error)
	Login(ctx context.Context, email, password string) (token string, err error)
	Logout(ctx context.Context, token string) error
}

type userService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	karma      karma.Checker
	tokens     *auth.JWTMaker
	blocklist  auth.TokenBlocklist
	ids        *idgen.Generator
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	txTimeout  time.Duration
}

// NewUserService creates a UserService.
func NewUserService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	karmaChecker karma.Checker,
	tokens *auth.JWTMaker,
	blocklist auth.TokenBlocklist,
	ids *idgen.Generator,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	txTimeout time.Duration,
) UserService {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &userService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		karma:      karmaChecker,
		tokens:     tokens,
		blocklist:  blocklist,
		ids:        ids,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		txTimeout:  txTimeout,
	}
}

// Register creates a user and their wallet inside one unit of work. The
// wallet PIN and password are stored only as one-way hashes. An identity
// flagged by the karma service is denied before anything is written.
func (s *userService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	listed, err := s.karma.Check(ctx, input.Email)
	if err != nil {
		return 0, fmt.Errorf("register: karma check failed: %w", err)
	}
	if listed {
		return 0, util.ErrKarmaDenied
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	pinHash, err := auth.HashPin(input.WalletPin)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRegisterAttempts; attempt++ {
		walletID, err := s.registerOnce(ctx, input, passwordHash, pinHash)
		if err == nil {
			return walletID, nil
		}
		// Only a wallet-id collision warrants a retry with a fresh id.
		if !errors.Is(err, errWalletIDCollision) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("register: exhausted %d wallet id attempts: %w", maxRegisterAttempts, lastErr)
}

// errWalletIDCollision marks a registration attempt that lost the wallet-id
// uniqueness race and should be retried wholesale.
var errWalletIDCollision = errors.New("wallet id collision")

func (s *userService) registerOnce(ctx context.Context, input RegisterInput, passwordHash, pinHash string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return 0, fmt.Errorf("register: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return 0, errors.New("register: transaction controller does not implement DBExecutor")
	}

	user := domain.NewUser(input.Name, input.Email, input.PhoneNumber, passwordHash)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return 0, fmt.Errorf("register: user already exists with this email: %w", util.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("register: %w", err)
	}

	// Probe first for a cheap reject; the UNIQUE constraint still decides.
	walletID := s.ids.NewWalletID()
	exists, err := s.walletRepo.WalletIDExists(ctx, txExecutor, walletID)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}
	if exists {
		return 0, errWalletIDCollision
	}

	wallet := domain.NewWallet(user.ID, walletID, pinHash)
	if err := s.walletRepo.CreateWallet(ctx, txExecutor, wallet); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return 0, errWalletIDCollision
		}
		return 0, fmt.Errorf("register: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("register: failed to commit transaction: %w", err)
	}
	return walletID, nil
}

// Login verifies credentials and issues a signed token. The karma gate also
// applies at login time.
func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	listed, err := s.karma.Check(ctx, email)
	if err != nil {
		return "", fmt.Errorf("login: karma check failed: %w", err)
	}
	if listed {
		return "", util.ErrKarmaDenied
	}

	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return "", util.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", util.ErrInvalidCredentials
	}

	token, _, err := s.tokens.CreateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Logout blocklists the presented token until it would have expired.
func (s *userService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return err
	}
	if err := s.blocklist.Block(ctx, claims); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
