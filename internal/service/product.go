package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// DefaultProductImage подставляется, если администратор не загрузил картинку.
const DefaultProductImage = "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800&q=80"

var productCategories = []string{
	models.CategoryMen,
	models.CategoryWomen,
	models.CategoryKids,
	models.CategoryNew,
	models.CategorySale,
}

// ProductInput — данные формы товара. Размеры и цвета приходят строкой через запятую.
type ProductInput struct {
	Name        string
	Description string
	Price       int
	Category    string
	Discount    int
	Sizes       string
	Colors      string
	Image       string
	Images      []string
}

// Uploader: бакет публичных файлов.
type Uploader interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

type ProductAdminService interface {
	Create(ctx context.Context, in ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, name string, body io.Reader) (string, error)
}

type productAdminService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	uploader    Uploader
}

func NewProductAdminService(log *slog.Logger, productRepo storage.ProductStorage, uploader Uploader) ProductAdminService {
	return &productAdminService{log: log, productRepo: productRepo, uploader: uploader}
}

func (s *productAdminService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	const op = "service.ProductAdminService.Create"

	p, err := in.product()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.productRepo.CreateProduct(ctx, p); err != nil {
		s.log.Error("failed to create product", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product created", slog.String("op", op), slog.String("productID", p.ID))
	return p, nil
}

func (s *productAdminService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	const op = "service.ProductAdminService.Update"

	p, err := in.product()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.ID = id
	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *productAdminService) Delete(ctx context.Context, id string) error {
	const op = "service.ProductAdminService.Delete"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.String("productID", id))
	return nil
}

// UploadImage кладёт картинку в бакет товаров и возвращает публичный URL.
func (s *productAdminService) UploadImage(ctx context.Context, name string, body io.Reader) (string, error) {
	const op = "service.ProductAdminService.UploadImage"

	url, err := s.uploader.Upload(ctx, name, body)
	if err != nil {
		s.log.Error("failed to upload image", slog.String("op", op), slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

func (in ProductInput) product() (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.ToLower(strings.TrimSpace(in.Category))

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case in.Price <= 0:
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	case !slices.Contains(productCategories, category):
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	case in.Discount < 0 || in.Discount > 100:
		return nil, fmt.Errorf("%w: discount must be within 0..100", ErrValidation)
	}

	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = DefaultProductImage
	}
	discount := in.Discount

	return &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    category,
		Discount:    &discount,
		IsNew:       category == models.CategoryNew,
		Sizes:       splitCSV(in.Sizes),
		Colors:      splitCSV(in.Colors),
		Image:       image,
		Images:      in.Images,
	}, nil
}

// splitCSV режет строку по запятым, пустые элементы отбрасываются.
func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
