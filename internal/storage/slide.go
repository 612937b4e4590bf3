package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrSlideNotFound = errors.New("slide not found")

// SlideStorage описывает методы для работы с таблицей hero_slides.
type SlideStorage interface {
	ListSlides(ctx context.Context, onlyActive bool) ([]*models.HeroSlide, error)
	CreateSlide(ctx context.Context, s *models.HeroSlide) error
	UpdateSlide(ctx context.Context, s *models.HeroSlide) error
	DeleteSlide(ctx context.Context, id string) error
}

type slideRepository struct {
	db *sql.DB
}

func NewSlideRepository(db *sql.DB) SlideStorage {
	return &slideRepository{db: db}
}

func (r *slideRepository) ListSlides(ctx context.Context, onlyActive bool) ([]*models.HeroSlide, error) {
	query := `SELECT id, title, subtitle, image_url, button_text, button_link, is_active, display_order
	          FROM hero_slides
	          WHERE is_active OR NOT $1
	          ORDER BY display_order`
	rows, err := r.db.QueryContext(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	var slides []*models.HeroSlide
	for rows.Next() {
		s := &models.HeroSlide{}
		if err := rows.Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImageURL, &s.ButtonText, &s.ButtonLink, &s.IsActive, &s.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		slides = append(slides, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slides, nil
}

func (r *slideRepository) CreateSlide(ctx context.Context, s *models.HeroSlide) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `INSERT INTO hero_slides (id, title, subtitle, image_url, button_text, button_link, is_active, display_order)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Title, s.Subtitle, s.ImageURL, s.ButtonText, s.ButtonLink, s.IsActive, s.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to create slide: %w", err)
	}
	return nil
}

func (r *slideRepository) UpdateSlide(ctx context.Context, s *models.HeroSlide) error {
	query := `UPDATE hero_slides
	          SET title = $2, subtitle = $3, image_url = $4, button_text = $5, button_link = $6, is_active = $7, display_order = $8
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.Title, s.Subtitle, s.ImageURL, s.ButtonText, s.ButtonLink, s.IsActive, s.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to update slide: %w", err)
	}
	return expectAffected(res, ErrSlideNotFound)
}

func (r *slideRepository) DeleteSlide(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM hero_slides WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete slide: %w", err)
	}
	return expectAffected(res, ErrSlideNotFound)
}
