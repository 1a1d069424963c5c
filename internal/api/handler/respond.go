package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"credpay-wallet/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

// validate is shared by all request payloads.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validationMessages flattens validator errors into field-level messages.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request payload"}
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "len":
			messages = append(messages, fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param()))
		case "numeric":
			messages = append(messages, fmt.Sprintf("%s must contain only digits", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return messages
}

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithValidationErrors(w http.ResponseWriter, logger *slog.Logger, messages []string) {
	respondWithJSON(w, logger, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation errors occurred",
		"fields": messages,
	})
}

// respondWithError maps service errors to HTTP status codes. An
// insufficient-balance rejection still carries the recorded failed attempt.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var insufficient *util.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		respondWithJSON(w, logger, http.StatusPaymentRequired, map[string]interface{}{
			"error":   "insufficient balance",
			"balance": insufficient.Balance,
			"record":  insufficient.Record,
		})
		return
	}

	statusCode := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, util.ErrInvalidInput),
		errors.Is(err, util.ErrPinMismatch),
		errors.Is(err, util.ErrSameWalletTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, util.ErrNotFound),
		errors.Is(err, util.ErrWalletNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = "resource not found"
	case errors.Is(err, util.ErrInvalidCredentials),
		errors.Is(err, util.ErrTokenInvalid),
		errors.Is(err, util.ErrTokenBlocked):
		statusCode = http.StatusUnauthorized
		message = "unauthorized access"
	case errors.Is(err, util.ErrKarmaDenied):
		statusCode = http.StatusForbidden
		message = "access denied: insufficient karma score"
	case errors.Is(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "duplicate entry"
	default:
		logger.Error("unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}
