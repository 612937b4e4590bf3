package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ProductFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

type ProductPage struct {
	Items    []*models.Product `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type CatalogService interface {
	List(ctx context.Context, filter ProductFilter) (ProductPage, error)
	Get(ctx context.Context, id string) (*models.Product, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

// List фильтрует каталог по названию и категории, затем режет на страницы.
// Категория "new" дополнительно включает все товары с флагом новинки.
func (s *catalogService) List(ctx context.Context, filter ProductFilter) (ProductPage, error) {
	const op = "service.CatalogService.List"

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return ProductPage{}, fmt.Errorf("%s: %w", op, err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	category := strings.ToLower(strings.TrimSpace(filter.Category))

	matched := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if !matchCategory(p, category) {
			continue
		}
		matched = append(matched, p)
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	from := min((page-1)*size, len(matched))
	to := min(from+size, len(matched))

	return ProductPage{
		Items:    matched[from:to],
		Total:    len(matched),
		Page:     page,
		PageSize: size,
	}, nil
}

func matchCategory(p *models.Product, category string) bool {
	switch category {
	case "", models.CategoryAll:
		return true
	case models.CategoryNew:
		return p.Category == models.CategoryNew || p.IsNew
	default:
		return p.Category == category
	}
}

func (s *catalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.CatalogService.Get"

	p, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
