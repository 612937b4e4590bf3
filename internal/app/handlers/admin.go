package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// ProductRequest форма товара в админке; sizes и colors строкой через запятую.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Price       int      `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Discount    int      `json:"discount" validate:"min=0,max=100"`
	Sizes       string   `json:"sizes"`
	Colors      string   `json:"colors"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Discount:    r.Discount,
		Sizes:       r.Sizes,
		Colors:      r.Colors,
		Image:       r.Image,
		Images:      r.Images,
	}
}

type UploadResponse struct {
	URL string `json:"url"`
}

// SlideRequest: is_active по умолчанию true.
type SlideRequest struct {
	Title        string `json:"title" validate:"max=200"`
	Subtitle     string `json:"subtitle"`
	ImageURL     string `json:"image_url"`
	ButtonText   string `json:"button_text"`
	ButtonLink   string `json:"button_link"`
	IsActive     *bool  `json:"is_active"`
	DisplayOrder int    `json:"display_order" validate:"min=0"`
}

func (r SlideRequest) slide() *models.HeroSlide {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.HeroSlide{
		Title:        r.Title,
		Subtitle:     r.Subtitle,
		ImageURL:     r.ImageURL,
		ButtonText:   r.ButtonText,
		ButtonLink:   r.ButtonLink,
		IsActive:     active,
		DisplayOrder: r.DisplayOrder,
	}
}

// CreateProductHandler обрабатывает POST /api/admin/products
func CreateProductHandler(log *slog.Logger, products service.ProductAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		p, err := products.Create(r.Context(), req.input())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, p)
	}
}

// UpdateProductHandler обрабатывает PUT /api/admin/products/{id}
func UpdateProductHandler(log *slog.Logger, products service.ProductAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		p, err := products.Update(r.Context(), chi.URLParam(r, "id"), req.input())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, p)
	}
}

// DeleteProductHandler обрабатывает DELETE /api/admin/products/{id}
func DeleteProductHandler(log *slog.Logger, products service.ProductAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		if err := products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadImageHandler обрабатывает POST /api/admin/uploads (multipart, поле file)
func UploadImageHandler(log *slog.Logger, products service.ProductAdminService, maxSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UploadImageHandler"
		logger := log.With(slog.String("op", op))

		// запас на заголовки multipart
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			logger.Error("invalid request: no file", slog.Any("error", err))
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		url, err := products.UploadImage(r.Context(), header.Filename, file)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, UploadResponse{URL: url})
	}
}

// AdminListSlidesHandler обрабатывает GET /api/admin/slides: все слайды, включая выключенные.
func AdminListSlidesHandler(log *slog.Logger, slides service.SlideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListSlidesHandler"
		logger := log.With(slog.String("op", op))

		list, err := slides.ListAll(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if list == nil {
			list = []*models.HeroSlide{}
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

// CreateSlideHandler обрабатывает POST /api/admin/slides
func CreateSlideHandler(log *slog.Logger, slides service.SlideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateSlideHandler"
		logger := log.With(slog.String("op", op))

		var req SlideRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		slide, err := slides.Create(r.Context(), req.slide())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, slide)
	}
}

// UpdateSlideHandler обрабатывает PUT /api/admin/slides/{id}
func UpdateSlideHandler(log *slog.Logger, slides service.SlideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateSlideHandler"
		logger := log.With(slog.String("op", op))

		var req SlideRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}
		slide := req.slide()
		slide.ID = chi.URLParam(r, "id")
		if err := slides.Update(r.Context(), slide); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, slide)
	}
}

// DeleteSlideHandler обрабатывает DELETE /api/admin/slides/{id}
func DeleteSlideHandler(log *slog.Logger, slides service.SlideService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteSlideHandler"
		logger := log.With(slog.String("op", op))

		if err := slides.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
