// Package session держит состояние клиента между запросами: личность,
// корзину и избранное. Одна сессия соответствует одной вкладке браузера.
package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/favorites"
)

// Identity — вошедший пользователь.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type Session struct {
	ID        string
	Cart      *cart.Store
	Favorites *favorites.Store

	adminEmails []string

	mu       sync.RWMutex
	identity *Identity
	lastSeen time.Time
}

// Identity возвращает копию личности или nil для гостя.
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// IsAdmin вычисляется из роли профиля и списка админских адресов из конфига.
func (s *Session) IsAdmin() bool {
	id := s.Identity()
	if id == nil {
		return false
	}
	return IsAdmin(id.Role, id.Email, s.adminEmails)
}

// IsAdmin общее правило для сессии и middleware.
func IsAdmin(role, email string, adminEmails []string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return email != "" && slices.ContainsFunc(adminEmails, func(e string) bool {
		return strings.EqualFold(e, email)
	})
}

// SignIn привязывает пользователя к сессии и ждёт загрузки его корзины из базы.
// Ошибка загрузки возвращается, но личность остаётся установленной.
func (s *Session) SignIn(ctx context.Context, id Identity) error {
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()

	return s.Cart.OnIdentityChange(ctx, id.UserID)
}

// SignOut снимает личность; локальная корзина очищается, строки в базе остаются.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	return s.Cart.OnIdentityChange(ctx, "")
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
