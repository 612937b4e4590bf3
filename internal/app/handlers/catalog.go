package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/service"
)

// ListProductsHandler обрабатывает GET /api/products?q=&category=&page=&page_size=
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		filter := service.ProductFilter{
			Search:   q.Get("q"),
			Category: q.Get("category"),
		}
		// нечисловые значения трактуются как отсутствующие
		filter.Page, _ = strconv.Atoi(q.Get("page"))
		filter.PageSize, _ = strconv.Atoi(q.Get("page_size"))

		page, err := catalog.List(r.Context(), filter)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, page)
	}
}

// GetProductHandler обрабатывает GET /api/products/{id}
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		product, err := catalog.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

// ListSlidesHandler обрабатывает GET /api/slides, только активные слайды.
func ListSlidesHandler(log *slog.Logger, slides service.SlideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListSlidesHandler"
		logger := log.With(slog.String("op", op))

		list, err := slides.ListActive(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}
