package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// Store — корзина одной сессии.
// Изменения применяются к памяти сразу; если в сессии есть пользователь,
// они асинхронно повторяются в cart_items. Ошибки зеркала только логируются,
// повторов и отката нет: до следующей полной загрузки память и база могут расходиться.
type Store struct {
	log           *slog.Logger
	repo          storage.CartStorage
	mirrorTimeout time.Duration

	mu     sync.Mutex
	cart   *Cart
	userID string // для гостя пустая строка

	inflight sync.WaitGroup
}

// NewStore создаёт пустую гостевую корзину.
func NewStore(log *slog.Logger, repo storage.CartStorage, mirrorTimeout time.Duration) *Store {
	return &Store{
		log:           log,
		repo:          repo,
		mirrorTimeout: mirrorTimeout,
		cart:          New(),
	}
}

// AddLine добавляет товар и возвращает получившуюся строку, не дожидаясь сети.
func (s *Store) AddLine(product models.Product, size, color string) models.CartLine {
	s.mu.Lock()
	line, _ := s.cart.Add(product, size, color)
	userID := s.userID
	s.mu.Unlock()

	if userID != "" {
		s.mirror("add", userID, product.ID, func(ctx context.Context) error {
			return s.mirrorAdd(ctx, userID, product.ID, size, color)
		})
	}
	return line
}

// RemoveLine удаляет строку товара. Повторное удаление ничего не меняет локально.
func (s *Store) RemoveLine(productID string) bool {
	s.mu.Lock()
	_, removed := s.cart.Remove(productID)
	userID := s.userID
	s.mu.Unlock()

	if userID != "" {
		s.mirror("remove", userID, productID, func(ctx context.Context) error {
			return s.repo.DeleteCartItem(ctx, userID, productID)
		})
	}
	return removed
}

// SetQuantity перезаписывает количество; quantity <= 0 работает как RemoveLine.
func (s *Store) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return s.RemoveLine(productID)
	}

	s.mu.Lock()
	ok := s.cart.SetQuantity(productID, quantity)
	userID := s.userID
	s.mu.Unlock()

	if userID != "" {
		s.mirror("set_quantity", userID, productID, func(ctx context.Context) error {
			return s.repo.SetCartItemQuantity(ctx, userID, productID, quantity)
		})
	}
	return ok
}

// Clear очищает корзину и, если есть пользователь, все его строки в cart_items.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cart.Clear()
	userID := s.userID
	s.mu.Unlock()

	if userID != "" {
		s.mirror("clear", userID, "", func(ctx context.Context) error {
			return s.repo.DeleteCartItems(ctx, userID)
		})
	}
}

// Snapshot возвращает копию строк на текущий момент.
func (s *Store) Snapshot() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}

// UserID возвращает пользователя, к которому привязана корзина.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// OnIdentityChange реагирует на вход и выход.
// Вход (или смена пользователя) заменяет содержимое полной загрузкой из базы,
// гостевые строки при этом теряются. Выход очищает только память.
func (s *Store) OnIdentityChange(ctx context.Context, userID string) error {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return nil
	}
	s.userID = userID
	s.cart.Clear()
	s.mu.Unlock()

	if userID == "" {
		return nil
	}
	return s.load(ctx, userID)
}

// Refresh перечитывает корзину из базы, если пользователь известен.
func (s *Store) Refresh(ctx context.Context) error {
	userID := s.UserID()
	if userID == "" {
		return nil
	}
	return s.load(ctx, userID)
}

// Wait дожидается завершения всех запущенных операций зеркала.
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) load(ctx context.Context, userID string) error {
	const op = "cart.Store.load"

	lines, err := s.repo.GetCartLines(ctx, userID)
	if err != nil {
		s.log.Error("failed to fetch cart", slog.String("op", op), slog.String("userID", userID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	// пока шла загрузка, пользователь мог смениться
	if s.userID == userID {
		s.cart.Replace(lines)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) mirrorAdd(ctx context.Context, userID, productID, size, color string) error {
	existing, err := s.repo.GetCartItem(ctx, userID, productID)
	switch {
	case errors.Is(err, storage.ErrCartItemNotFound):
		return s.repo.InsertCartItem(ctx, &models.CartItemRow{
			UserID:    userID,
			ProductID: productID,
			Quantity:  1,
			Size:      size,
			Color:     color,
		})
	case err != nil:
		return err
	}
	return s.repo.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+1)
}

// mirror запускает операцию в отдельной горутине; порядок завершения не гарантирован.
func (s *Store) mirror(action, userID, productID string, fn func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx := context.Background()
		if s.mirrorTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.mirrorTimeout)
			defer cancel()
		}

		if err := fn(ctx); err != nil {
			s.log.Error("cart mirror failed",
				slog.String("op", "cart.Store.mirror"),
				slog.String("action", action),
				slog.String("userID", userID),
				slog.String("productID", productID),
				slog.Any("error", err),
			)
		}
	}()
}
