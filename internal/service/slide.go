package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

type SlideService interface {
	ListActive(ctx context.Context) ([]*models.HeroSlide, error)
	ListAll(ctx context.Context) ([]*models.HeroSlide, error)
	Create(ctx context.Context, slide *models.HeroSlide) (*models.HeroSlide, error)
	Update(ctx context.Context, slide *models.HeroSlide) error
	Delete(ctx context.Context, id string) error
}

type slideService struct {
	log       *slog.Logger
	slideRepo storage.SlideStorage
}

func NewSlideService(log *slog.Logger, slideRepo storage.SlideStorage) SlideService {
	return &slideService{log: log, slideRepo: slideRepo}
}

func (s *slideService) ListActive(ctx context.Context) ([]*models.HeroSlide, error) {
	return s.list(ctx, true)
}

func (s *slideService) ListAll(ctx context.Context) ([]*models.HeroSlide, error) {
	return s.list(ctx, false)
}

func (s *slideService) list(ctx context.Context, onlyActive bool) ([]*models.HeroSlide, error) {
	const op = "service.SlideService.list"

	slides, err := s.slideRepo.ListSlides(ctx, onlyActive)
	if err != nil {
		s.log.Error("failed to list slides", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return slides, nil
}

// Create добавляет слайд в конец; пустые поля заполняются текстом по умолчанию.
func (s *slideService) Create(ctx context.Context, slide *models.HeroSlide) (*models.HeroSlide, error) {
	const op = "service.SlideService.Create"

	existing, err := s.slideRepo.ListSlides(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := *slide
	out.ID = ""
	if strings.TrimSpace(out.Title) == "" {
		out.Title = "Step Into Style"
	}
	if out.Subtitle == "" {
		out.Subtitle = "New Collection"
	}
	if out.ButtonText == "" {
		out.ButtonText = "Show More"
	}
	if out.ButtonLink == "" {
		out.ButtonLink = "/products"
	}
	out.DisplayOrder = len(existing)

	if err := s.slideRepo.CreateSlide(ctx, &out); err != nil {
		s.log.Error("failed to create slide", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

func (s *slideService) Update(ctx context.Context, slide *models.HeroSlide) error {
	const op = "service.SlideService.Update"

	if strings.TrimSpace(slide.Title) == "" {
		return fmt.Errorf("%s: %w: title is required", op, ErrValidation)
	}
	if err := s.slideRepo.UpdateSlide(ctx, slide); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *slideService) Delete(ctx context.Context, id string) error {
	const op = "service.SlideService.Delete"

	if err := s.slideRepo.DeleteSlide(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
