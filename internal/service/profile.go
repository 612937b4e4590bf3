package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

type ProfileInput struct {
	FullName  string
	Phone     string
	AvatarURL string
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error)
}

type profileService struct {
	log         *slog.Logger
	profileRepo storage.ProfileStorage
}

func NewProfileService(log *slog.Logger, profileRepo storage.ProfileStorage) ProfileService {
	return &profileService{log: log, profileRepo: profileRepo}
}

// Get возвращает профиль; вместо отсутствующего отдаётся пустой профиль покупателя.
func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "service.ProfileService.Get"

	p, err := s.profileRepo.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrProfileNotFound) {
		return &models.Profile{UserID: userID, Role: models.RoleCustomer}, nil
	}
	if err != nil {
		s.log.Error("failed to get profile", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	const op = "service.ProfileService.Upsert"

	p := &models.Profile{
		UserID:    userID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
		Role:      models.RoleCustomer,
	}
	if err := s.profileRepo.UpsertProfile(ctx, p); err != nil {
		s.log.Error("failed to upsert profile", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
