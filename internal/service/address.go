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

type AddressInput struct {
	FullName     string
	Phone        string
	Wilaya       string
	Commune      string
	AddressLine1 string
	Label        string
	IsDefault    bool
}

func (in AddressInput) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", in.FullName},
		{"address_line1", in.AddressLine1},
		{"wilaya", in.Wilaya},
		{"phone", in.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

type AddressService interface {
	List(ctx context.Context, userID string) ([]*models.Address, error)
	Add(ctx context.Context, userID string, in AddressInput) (*models.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
	Default(ctx context.Context, userID string) (*models.Address, error)
}

type addressService struct {
	log         *slog.Logger
	addressRepo storage.AddressStorage
}

func NewAddressService(log *slog.Logger, addressRepo storage.AddressStorage) AddressService {
	return &addressService{log: log, addressRepo: addressRepo}
}

// List возвращает адреса: сначала адрес по умолчанию, затем новые.
func (s *addressService) List(ctx context.Context, userID string) ([]*models.Address, error) {
	const op = "service.AddressService.List"

	addrs, err := s.addressRepo.GetAddressesByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list addresses", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return addrs, nil
}

// Add сохраняет адрес. Первый адрес пользователя всегда становится адресом по умолчанию.
func (s *addressService) Add(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	const op = "service.AddressService.Add"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID))

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.addressRepo.GetAddressesByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to list addresses", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	isDefault := in.IsDefault || len(existing) == 0
	if isDefault && len(existing) > 0 {
		if err := s.addressRepo.UnsetDefaultAddresses(ctx, userID); err != nil {
			logger.Error("failed to unset default addresses", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	addr := &models.Address{
		UserID:       userID,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Wilaya:       strings.TrimSpace(in.Wilaya),
		Commune:      strings.TrimSpace(in.Commune),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		Label:        strings.TrimSpace(in.Label),
		IsDefault:    isDefault,
	}
	if err := s.addressRepo.CreateAddress(ctx, addr); err != nil {
		logger.Error("failed to create address", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("address added", slog.String("addressID", addr.ID), slog.Bool("default", isDefault))
	return addr, nil
}

// Delete удаляет адрес. Если удалён адрес по умолчанию, им становится самый новый из оставшихся.
func (s *addressService) Delete(ctx context.Context, userID, id string) error {
	const op = "service.AddressService.Delete"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID), slog.String("addressID", id))

	if err := s.addressRepo.DeleteAddress(ctx, userID, id); err != nil {
		logger.Error("failed to delete address", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.addressRepo.GetDefaultAddress(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrAddressNotFound) {
		logger.Error("failed to get default address", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	rest, err := s.addressRepo.GetAddressesByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to list addresses", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	var newest *models.Address
	for _, a := range rest {
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil {
		return nil
	}
	if err := s.addressRepo.SetDefaultAddress(ctx, userID, newest.ID); err != nil {
		logger.Error("failed to promote default address", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("default address promoted", slog.String("defaultID", newest.ID))
	return nil
}

// SetDefault снимает флаг со всех адресов и ставит его на выбранный.
// Два шага не атомарны: при конкурентных вызовах адресов по умолчанию может оказаться ноль или два.
func (s *addressService) SetDefault(ctx context.Context, userID, id string) error {
	const op = "service.AddressService.SetDefault"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID), slog.String("addressID", id))

	addr, err := s.addressRepo.GetAddressByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if addr.UserID != userID {
		return fmt.Errorf("%s: %w", op, storage.ErrAddressNotFound)
	}

	if err := s.addressRepo.UnsetDefaultAddresses(ctx, userID); err != nil {
		logger.Error("failed to unset default addresses", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.addressRepo.SetDefaultAddress(ctx, userID, id); err != nil {
		logger.Error("failed to set default address", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *addressService) Default(ctx context.Context, userID string) (*models.Address, error) {
	const op = "service.AddressService.Default"

	addr, err := s.addressRepo.GetDefaultAddress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return addr, nil
}
