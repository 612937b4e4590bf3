package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

type OrderService interface {
	ListMine(ctx context.Context, userID string) ([]*models.Order, error)
	Cancel(ctx context.Context, userID, orderID string) error
	ListAll(ctx context.Context) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

type orderService struct {
	log          *slog.Logger
	orderRepo    storage.OrderStorage
	fetchTimeout time.Duration
}

// NewOrderService: fetchTimeout ограничивает выборку всех заказов для администратора.
func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, fetchTimeout time.Duration) OrderService {
	return &orderService{log: log, orderRepo: orderRepo, fetchTimeout: fetchTimeout}
}

func (s *orderService) ListMine(ctx context.Context, userID string) ([]*models.Order, error) {
	const op = "service.OrderService.ListMine"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.String("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Cancel отменяет свой заказ, пока он в статусе pending.
func (s *orderService) Cancel(ctx context.Context, userID, orderID string) error {
	const op = "service.OrderService.Cancel"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID), slog.String("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if order.UserID != userID {
		return fmt.Errorf("%s: %w", op, storage.ErrOrderNotFound)
	}
	if order.Status != models.OrderStatusPending {
		logger.Warn("order is not pending", slog.String("status", string(order.Status)))
		return fmt.Errorf("%s: %w", op, ErrOrderNotCancellable)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
		logger.Error("failed to cancel order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("order cancelled")
	return nil
}

func (s *orderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list all orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateStatus меняет статус по запросу администратора, переходы не ограничены.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	const op = "service.OrderService.UpdateStatus"

	if !status.Valid() {
		return fmt.Errorf("%s: %w: unknown status %q", op, ErrValidation, status)
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.log.Error("failed to update order status", slog.String("op", op), slog.String("orderID", orderID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("order status updated", slog.String("op", op), slog.String("orderID", orderID), slog.String("status", string(status)))
	return nil
}
