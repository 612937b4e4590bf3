package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

type ToggleFavoriteResponse struct {
	ProductID string `json:"product_id"`
	Favorite  bool   `json:"favorite"`
}

// ListFavoritesHandler обрабатывает GET /api/favorites
func ListFavoritesHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListFavoritesHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		items := sess.Favorites.List()
		if items == nil {
			items = []models.Product{}
		}
		writeJSON(w, logger, http.StatusOK, items)
	}
}

// ToggleFavoriteHandler обрабатывает POST /api/favorites/{productID}/toggle.
// В избранное кладётся снимок товара на момент добавления.
func ToggleFavoriteHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ToggleFavoriteHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		productID := chi.URLParam(r, "productID")

		product := &models.Product{ID: productID}
		// для удаления каталог не нужен: товар мог уже исчезнуть
		if !sess.Favorites.IsFavorite(productID) {
			var err error
			if product, err = catalog.Get(r.Context(), productID); err != nil {
				writeError(w, logger, err)
				return
			}
		}

		added, err := sess.Favorites.Toggle(r.Context(), *product)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, ToggleFavoriteResponse{ProductID: productID, Favorite: added})
	}
}
