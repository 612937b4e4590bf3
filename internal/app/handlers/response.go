package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/objectstore"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
)

var validate = validator.New()

// errorStatuses сопоставляет ошибки бизнес-логики HTTP-статусам; порядок важен.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrCartEmpty, http.StatusBadRequest},
	{service.ErrAddressRequired, http.StatusBadRequest},
	{service.ErrInvalidDeliveryMethod, http.StatusBadRequest},
	{objectstore.ErrUnsupportedType, http.StatusBadRequest},
	{objectstore.ErrTooLarge, http.StatusBadRequest},
	{objectstore.ErrEmptyFile, http.StatusBadRequest},
	{service.ErrAuthRequired, http.StatusUnauthorized},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{storage.ErrProductNotFound, http.StatusNotFound},
	{storage.ErrOrderNotFound, http.StatusNotFound},
	{storage.ErrAddressNotFound, http.StatusNotFound},
	{storage.ErrSlideNotFound, http.StatusNotFound},
	{storage.ErrUserNotFound, http.StatusNotFound},
	{storage.ErrUserExists, http.StatusConflict},
	{service.ErrOrderNotCancellable, http.StatusConflict},
	{service.ErrOrderSubmit, http.StatusBadGateway},
}

// writeError отвечает текстом ошибки из бизнес-логики; на всё неизвестное 500 без подробностей.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.err) {
			continue
		}
		msg := e.err.Error()
		// у ошибок валидации показываем и подробность
		if e.err == service.ErrValidation {
			if full := err.Error(); strings.Contains(full, msg) {
				msg = full[strings.Index(full, msg):]
			}
		}
		logger.Warn("request failed", slog.Int("status", e.status), slog.Any("error", err))
		http.Error(w, msg, e.status)
		return
	}
	logger.Error("request failed", slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeRequest читает JSON и прогоняет его через validator.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(req); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		http.Error(w, "validation error", http.StatusBadRequest)
		return false
	}
	return true
}

func sessionFrom(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		logger.Error("session not found in context")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
	return sess, ok
}

func userFrom(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	userID, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("userID not found in context")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}
