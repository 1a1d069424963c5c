package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"credpay-wallet/internal/api"
	"credpay-wallet/internal/api/handler"
	"credpay-wallet/internal/auth"
	"credpay-wallet/internal/config"
	"credpay-wallet/internal/idgen"
	"credpay-wallet/internal/karma"
	"credpay-wallet/internal/repository"
	"credpay-wallet/internal/repository/postgres"
	"credpay-wallet/internal/service"
	"credpay-wallet/internal/util"
	"credpay-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository

	LedgerService service.LedgerService
	UserService   service.UserService

	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("configuration loaded")

	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("database connection established")

	app.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := app.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.Logger.Info("redis connection established")

	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()

	ids := idgen.New()
	tokenMaker := auth.NewJWTMaker(cfg.JWTSecret, cfg.JWTExpiry)
	blocklist := auth.NewTokenBlocklist(app.Redis)
	pinVerifier := auth.NewPinVerifier(app.DB, app.WalletRepository)
	karmaClient := karma.NewClient(cfg.KarmaBaseURL, cfg.KarmaAPIKey)

	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		pinVerifier,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		ids.NewTransactionID,
		cfg.TxTimeout,
	)
	app.UserService = service.NewUserService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		karmaClient,
		tokenMaker,
		blocklist,
		ids,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		cfg.TxTimeout,
	)
	app.Logger.Info("services initialized")

	app.HTTPHandler = api.NewRouter(api.RouterDeps{
		Wallets:            handler.NewWalletHandler(app.LedgerService, app.Logger),
		Transactions:       handler.NewTransactionHandler(app.LedgerService, app.Logger),
		Users:              handler.NewUserHandler(app.UserService, app.Logger),
		TokenMaker:         tokenMaker,
		Blocklist:          blocklist,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})
	app.Logger.Info("HTTP router and handlers initialized")

	return nil
}

// Shutdown gracefully closes application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}
	app.Logger.Info("application shut down gracefully")
	return nil
}
