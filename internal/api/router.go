package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"credpay-wallet/internal/api/handler"
	"credpay-wallet/internal/auth"
)

// RouterDeps bundles what the router needs.
type RouterDeps struct {
	Wallets            *handler.WalletHandler
	Transactions       *handler.TransactionHandler
	Users              *handler.UserHandler
	TokenMaker         *auth.JWTMaker
	Blocklist          auth.TokenBlocklist
	LoginRatePerMinute int
}

// NewRouter sets up and returns the HTTP router.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	loginLimiter := newRateLimiter(deps.LoginRatePerMinute)
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.middleware)
		r.Post("/users/register", deps.Users.Register)
		r.Post("/users/login", deps.Users.Login)
	})

	// Everything below requires a verified, non-blocklisted token.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.TokenMaker, deps.Blocklist))

		r.Post("/users/logout", deps.Users.Logout)

		// chi matches the static "me" segment before {walletID}.
		r.Get("/wallets/me", deps.Wallets.GetMyWallet)

		r.Route("/wallets/{walletID}", func(r chi.Router) {
			r.Get("/", deps.Wallets.GetWalletInfo)
			r.Post("/deposit", deps.Wallets.Deposit)
			r.Post("/withdraw", deps.Wallets.Withdraw)
			r.Get("/transactions", deps.Transactions.ListTransactions)
		})

		// Transfer involves two wallets, so it gets a top-level endpoint.
		r.Post("/transfers", deps.Wallets.Transfer)

		r.Get("/transactions/{transactionID}", deps.Transactions.GetTransaction)
	})

	return r
}
