package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// CartResponse — снимок корзины сессии.
type CartResponse struct {
	Items []models.CartLine `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func cartResponse(store *cart.Store) CartResponse {
	items := store.Snapshot()
	var total float64
	count := 0
	for _, l := range items {
		total += l.Subtotal()
		count += l.Quantity
	}
	return CartResponse{Items: items, Count: count, Total: total}
}

// GetCartHandler обрабатывает GET /api/cart.
// С ?refresh=1 корзина вошедшего пользователя сначала перечитывается из базы.
func GetCartHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
			if err := sess.Cart.Refresh(r.Context()); err != nil {
				// отдаём то, что есть в памяти
				logger.Warn("cart refresh failed", slog.Any("error", err))
			}
		}
		writeJSON(w, logger, http.StatusOK, cartResponse(sess.Cart))
	}
}

// AddCartItemHandler обрабатывает POST /api/cart/items.
// Ответ приходит сразу после изменения в памяти, запись в базу идёт в фоне.
func AddCartItemHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		var req AddCartItemRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		product, err := catalog.Get(r.Context(), req.ProductID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		sess.Cart.AddLine(*product, req.Size, req.Color)
		writeJSON(w, logger, http.StatusOK, cartResponse(sess.Cart))
	}
}

// UpdateCartItemHandler обрабатывает PUT /api/cart/items/{productID}; quantity <= 0 удаляет строку.
func UpdateCartItemHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		var req UpdateCartItemRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		sess.Cart.SetQuantity(chi.URLParam(r, "productID"), *req.Quantity)
		writeJSON(w, logger, http.StatusOK, cartResponse(sess.Cart))
	}
}

// DeleteCartItemHandler обрабатывает DELETE /api/cart/items/{productID}
func DeleteCartItemHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCartItemHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		sess.Cart.RemoveLine(chi.URLParam(r, "productID"))
		writeJSON(w, logger, http.StatusOK, cartResponse(sess.Cart))
	}
}

// ClearCartHandler обрабатывает DELETE /api/cart
func ClearCartHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearCartHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		sess.Cart.Clear()
		writeJSON(w, logger, http.StatusOK, cartResponse(sess.Cart))
	}
}
