package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/favorites"
	"github.com/linemk/storefront/internal/storage"
)

// ScopeFunc отдаёт локальное хранилище ключей для сессии.
type ScopeFunc func(sessionID string) favorites.KV

// Pruner чистит локальные данные, не менявшиеся с момента before.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Options struct {
	MirrorTimeout time.Duration
	AdminEmails   []string
	// Pruner и LocalRetention необязательны; без них локальные данные не чистятся.
	Pruner         Pruner
	LocalRetention time.Duration
}

// Manager хранит сессии в памяти процесса.
type Manager struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
	scope    ScopeFunc
	opts     Options
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	// корзины удалённых сессий, у которых ещё могут идти записи в базу
	retiring sync.WaitGroup
}

func NewManager(log *slog.Logger, cartRepo storage.CartStorage, scope ScopeFunc, opts Options) *Manager {
	return &Manager{
		log:      log,
		cartRepo: cartRepo,
		scope:    scope,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get возвращает существующую сессию и продлевает её жизнь.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch(m.now())
	}
	return s, ok
}

// GetOrCreate находит сессию по id или создаёт новую.
// Корректный, но неизвестный id переиспользуется: так избранное гостя переживает перезапуск сервера.
// Пустой или некорректный id заменяется новым. Личность к такому id не привязывается:
// при входе сессия получает новый id (см. Rotate).
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	const op = "session.Manager.GetOrCreate"

	if s, ok := m.Get(id); ok {
		return s, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s := m.newSession(id)
	if err := s.Favorites.Load(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// параллельный запрос мог успеть создать ту же сессию
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = s
	m.log.Debug("session created", slog.String("session", id))
	return s, nil
}

// Rotate заменяет сессию новой с id, выданным сервером, и переносит в неё избранное.
// Старый id после этого ничего не знает ни о пользователе, ни о его избранном.
// Вызывается перед привязкой пользователя.
func (m *Manager) Rotate(ctx context.Context, old *Session) (*Session, error) {
	const op = "session.Manager.Rotate"

	id := uuid.NewString()
	s := m.newSession(id)
	if err := s.Favorites.Replace(ctx, old.Favorites.List()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := old.Favorites.Discard(ctx); err != nil {
		m.log.Warn("failed to discard favorites of rotated session",
			slog.String("op", op), slog.String("session", old.ID), slog.Any("error", err))
	}

	m.mu.Lock()
	if m.sessions[old.ID] == old {
		delete(m.sessions, old.ID)
	}
	m.sessions[id] = s
	m.mu.Unlock()
	m.retire(old)

	m.log.Debug("session rotated", slog.String("from", old.ID), slog.String("to", id))
	return s, nil
}

func (m *Manager) newSession(id string) *Session {
	log := m.log.With(slog.String("session", id))
	return &Session{
		ID:          id,
		Cart:        cart.NewStore(log, m.cartRepo, m.opts.MirrorTimeout),
		Favorites:   favorites.NewStore(log, m.scope(id)),
		adminEmails: m.opts.AdminEmails,
		lastSeen:    m.now(),
	}
}

// retire запоминает корзину удалённой сессии, чтобы Wait дождался её записей.
func (m *Manager) retire(s *Session) {
	m.retiring.Add(1)
	go func() {
		defer m.retiring.Done()
		s.Cart.Wait()
	}()
}

// Sweep удаляет сессии, простаивающие дольше idleTTL, и возвращает их число.
func (m *Manager) Sweep(idleTTL time.Duration) int {
	deadline := m.now().Add(-idleTTL)

	m.mu.Lock()
	var removed []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(deadline) {
			delete(m.sessions, id)
			removed = append(removed, s)
		}
	}
	m.mu.Unlock()

	for _, s := range removed {
		m.retire(s)
	}
	return len(removed)
}

// Len возвращает число живых сессий.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Wait дожидается зеркальных записей всех корзин, включая корзины уже удалённых сессий.
func (m *Manager) Wait() {
	m.mu.RLock()
	stores := make([]*cart.Store, 0, len(m.sessions))
	for _, s := range m.sessions {
		stores = append(stores, s.Cart)
	}
	m.mu.RUnlock()

	for _, st := range stores {
		st.Wait()
	}
	m.retiring.Wait()
}

// RunSweeper периодически чистит простаивающие сессии и старые локальные данные до отмены ctx.
func (m *Manager) RunSweeper(ctx context.Context, idleTTL, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idleTTL); n > 0 {
				m.log.Info("idle sessions removed", slog.Int("count", n))
			}
			m.prune(ctx)
		}
	}
}

func (m *Manager) prune(ctx context.Context) {
	const op = "session.Manager.prune"

	if m.opts.Pruner == nil || m.opts.LocalRetention <= 0 {
		return
	}
	n, err := m.opts.Pruner.Prune(ctx, m.now().Add(-m.opts.LocalRetention))
	if err != nil {
		m.log.Error("failed to prune local store", slog.String("op", op), slog.Any("error", err))
		return
	}
	if n > 0 {
		m.log.Info("stale local values removed", slog.String("op", op), slog.Int64("count", n))
	}
}
