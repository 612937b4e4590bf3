package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
)

// ShippingRates — тарифы доставки. Регион на цену не влияет.
type ShippingRates struct {
	BaseRate       int
	PickupDiscount int
}

// Cost возвращает стоимость доставки для способа.
func (r ShippingRates) Cost(method models.DeliveryMethod) (int, error) {
	switch method {
	case models.DeliveryHome:
		return r.BaseRate, nil
	case models.DeliveryPickup:
		return max(r.BaseRate-r.PickupDiscount, 0), nil
	default:
		return 0, ErrInvalidDeliveryMethod
	}
}

type CheckoutRequest struct {
	// Если AddressID пустой, используется адрес по умолчанию.
	AddressID      string
	DeliveryMethod models.DeliveryMethod
}

type CheckoutService interface {
	Checkout(ctx context.Context, sess *session.Session, req CheckoutRequest) (*models.Order, error)
}

type checkoutService struct {
	log         *slog.Logger
	addressRepo storage.AddressStorage
	orderRepo   storage.OrderStorage
	rates       ShippingRates
}

func NewCheckoutService(log *slog.Logger, addressRepo storage.AddressStorage, orderRepo storage.OrderStorage, rates ShippingRates) CheckoutService {
	return &checkoutService{
		log:         log,
		addressRepo: addressRepo,
		orderRepo:   orderRepo,
		rates:       rates,
	}
}

// Checkout превращает снимок корзины в заказ.
// Заказ вставляется одной операцией; корзина очищается только после успешной вставки.
// Вставка и очистка не атомарны: если зеркальное удаление строк корзины не дойдёт,
// заказ останется, а строки вернутся при следующей загрузке корзины.
func (s *checkoutService) Checkout(ctx context.Context, sess *session.Session, req CheckoutRequest) (*models.Order, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.String("session", sess.ID))

	identity := sess.Identity()
	if identity == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}
	logger = logger.With(slog.String("userID", identity.UserID))

	lines := sess.Cart.Snapshot()
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrCartEmpty)
	}

	addr, err := s.resolveAddress(ctx, identity.UserID, req.AddressID)
	if err != nil {
		if errors.Is(err, ErrAddressRequired) {
			logger.Warn("no address for checkout")
		} else {
			logger.Error("failed to resolve address", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shipping, err := s.rates.Cost(req.DeliveryMethod)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", op, req.DeliveryMethod, err)
	}

	var subtotal float64
	for _, l := range lines {
		subtotal += l.Subtotal()
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         identity.UserID,
		FullName:       addr.FullName,
		Phone:          addr.Phone,
		Address:        addr.String(),
		Items:          models.OrderItemsFromLines(lines),
		DeliveryMethod: req.DeliveryMethod,
		ShippingCost:   shipping,
		TotalAmount:    subtotal + float64(shipping),
		Status:         models.OrderStatusPending,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		logger.Error("failed to submit order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrOrderSubmit, err)
	}

	sess.Cart.Clear()

	logger.Info("order placed", slog.String("orderID", order.ID), slog.Float64("total", order.TotalAmount))
	return order, nil
}

func (s *checkoutService) resolveAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	if addressID == "" {
		addr, err := s.addressRepo.GetDefaultAddress(ctx, userID)
		if errors.Is(err, storage.ErrAddressNotFound) {
			return nil, ErrAddressRequired
		}
		return addr, err
	}

	addr, err := s.addressRepo.GetAddressByID(ctx, addressID)
	if errors.Is(err, storage.ErrAddressNotFound) {
		return nil, ErrAddressRequired
	}
	if err != nil {
		return nil, err
	}
	// чужой адрес неотличим от отсутствующего
	if addr.UserID != userID {
		return nil, ErrAddressRequired
	}
	return addr, nil
}
