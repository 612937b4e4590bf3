// Package favorites хранит избранные товары сессии.
// Хранятся только локально, в удаленную базу не зеркалируются.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/linemk/storefront/internal/domain/models"
)

// StorageKey фиксированный ключ, под которым лежит сериализованный массив.
const StorageKey = "favorites"

// KV локальное хранилище ключ/значение.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store хранит полные снимки товаров, а не ссылки:
// последующие правки каталога на избранное не влияют.
type Store struct {
	log *slog.Logger
	kv  KV

	mu     sync.Mutex
	items  []models.Product
	loaded bool
}

func NewStore(log *slog.Logger, kv KV) *Store {
	return &Store{log: log, kv: kv}
}

// Load читает избранное из хранилища. Поврежденные данные логируются и считаются пустыми.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	const op = "favorites.Store.Load"

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.items = nil
	s.loaded = true
	if !ok {
		return nil
	}

	var items []models.Product
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Error("failed to parse favorites", slog.String("op", op), slog.Any("error", err))
		return nil
	}
	s.items = items
	return nil
}

// Toggle добавляет товар, если его нет, и удаляет, если есть.
// Возвращает true, если товар добавлен.
func (s *Store) Toggle(ctx context.Context, product models.Product) (bool, error) {
	const op = "favorites.Store.Toggle"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.loadLocked(ctx); err != nil {
			return false, err
		}
	}

	next := make([]models.Product, 0, len(s.items)+1)
	added := true
	for _, p := range s.items {
		if p.ID == product.ID {
			added = false
			continue
		}
		next = append(next, p)
	}
	if added {
		next = append(next, product)
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return added, nil
}

// Replace перезаписывает избранное целиком, например при переносе в новую сессию.
func (s *Store) Replace(ctx context.Context, items []models.Product) error {
	const op = "favorites.Store.Replace"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Product, len(items))
	copy(next, items)
	if err := s.persistLocked(ctx, next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Discard удаляет сохранённое избранное и очищает память.
func (s *Store) Discard(ctx context.Context) error {
	const op = "favorites.Store.Discard"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.items = nil
	s.loaded = true
	return nil
}

// persistLocked пишет список в хранилище и только после успеха меняет память.
func (s *Store) persistLocked(ctx context.Context, items []models.Product) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return err
	}
	s.items = items
	s.loaded = true
	return nil
}

// IsFavorite проверяет принадлежность без обращения к хранилищу.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// List возвращает избранное в порядке добавления.
func (s *Store) List() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.items))
	copy(out, s.items)
	return out
}
