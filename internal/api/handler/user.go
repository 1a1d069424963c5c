package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"credpay-wallet/internal/service"
	"credpay-wallet/internal/util"
)

// UserHandler serves registration, login and logout.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// RegisterRequest is the payload for POST /users/register.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,numeric,min=10,max=15"`
	Password    string `json:"password" validate:"required,min=8"`
	WalletPin   string `json:"wallet_pin" validate:"required,len=4,numeric"`
}

// Register handles POST /users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithValidationErrors(w, h.logger, validationMessages(err))
		return
	}

	walletID, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		WalletPin:   req.WalletPin,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message":   "user created successfully",
		"wallet_id": walletID,
	})
}

// LoginRequest is the payload for POST /users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithValidationErrors(w, h.logger, validationMessages(err))
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"token": token})
}

// Logout handles POST /users/logout; the token to revoke comes from the
// Authorization header.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		respondWithError(w, h.logger, util.ErrTokenInvalid)
		return
	}

	if err := h.users.Logout(r.Context(), strings.TrimPrefix(header, "Bearer ")); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": "logged out"})
}
