package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func nonNilOrders(orders []*models.Order) []*models.Order {
	if orders == nil {
		return []*models.Order{}
	}
	return orders
}

// ListMyOrdersHandler обрабатывает GET /api/orders
func ListMyOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListMyOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		list, err := orders.ListMine(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, nonNilOrders(list))
	}
}

// CancelOrderHandler обрабатывает POST /api/orders/{id}/cancel
func CancelOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CancelOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFrom(w, r, logger)
		if !ok {
			return
		}
		if err := orders.Cancel(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminListOrdersHandler обрабатывает GET /api/admin/orders
func AdminListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListOrdersHandler"
		logger := log.With(slog.String("op", op))

		list, err := orders.ListAll(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, nonNilOrders(list))
	}
}

// AdminUpdateOrderStatusHandler обрабатывает PUT /api/admin/orders/{id}/status
func AdminUpdateOrderStatusHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminUpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateOrderStatusRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		if err := orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), models.OrderStatus(req.Status)); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
