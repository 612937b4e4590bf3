package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// CheckoutRequest: если address_id пустой, берётся адрес по умолчанию.
type CheckoutRequest struct {
	AddressID      string `json:"address_id"`
	DeliveryMethod string `json:"delivery_method" validate:"required"`
}

// CheckoutHandler обрабатывает POST /api/checkout.
// Токен должен принадлежать пользователю, вошедшему в эту сессию.
func CheckoutHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		if id := sess.Identity(); id == nil || id.UserID != userID {
			writeError(w, logger, service.ErrAuthRequired)
			return
		}

		var req CheckoutRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		order, err := checkout.Checkout(r.Context(), sess, service.CheckoutRequest{
			AddressID:      req.AddressID,
			DeliveryMethod: models.DeliveryMethod(req.DeliveryMethod),
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, order)
	}
}
