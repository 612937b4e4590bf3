package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// AddAddressRequest: обязательность полей проверяет сервис, чтобы вернуть их список.
type AddAddressRequest struct {
	FullName     string `json:"full_name" validate:"max=120"`
	Phone        string `json:"phone" validate:"max=32"`
	Wilaya       string `json:"wilaya" validate:"max=64"`
	Commune      string `json:"commune" validate:"max=64"`
	AddressLine1 string `json:"address_line1" validate:"max=255"`
	Label        string `json:"label" validate:"max=64"`
	IsDefault    bool   `json:"is_default"`
}

// ListAddressesHandler обрабатывает GET /api/addresses
func ListAddressesHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAddressesHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		list, err := addresses.List(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if list == nil {
			list = []*models.Address{}
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

// AddAddressHandler обрабатывает POST /api/addresses
func AddAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		var req AddAddressRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		addr, err := addresses.Add(r.Context(), userID, service.AddressInput{
			FullName:     req.FullName,
			Phone:        req.Phone,
			Wilaya:       req.Wilaya,
			Commune:      req.Commune,
			AddressLine1: req.AddressLine1,
			Label:        req.Label,
			IsDefault:    req.IsDefault,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, addr)
	}
}

// DeleteAddressHandler обрабатывает DELETE /api/addresses/{id}
func DeleteAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		if err := addresses.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetDefaultAddressHandler обрабатывает POST /api/addresses/{id}/default
func SetDefaultAddressHandler(log *slog.Logger, addresses service.AddressService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetDefaultAddressHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		if err := addresses.SetDefault(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
