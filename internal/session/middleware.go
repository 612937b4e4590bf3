package session

import (
	"context"
	"log/slog"
	"net/http"
)

// HeaderName — заголовок, в котором клиент передаёт и получает id сессии.
const HeaderName = "X-Session-ID"

type contextKey string

const sessionKey contextKey = "session"

// Middleware находит или создаёт сессию и кладёт её в контекст запроса.
func Middleware(log *slog.Logger, m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.GetOrCreate(r.Context(), r.Header.Get(HeaderName))
			if err != nil {
				log.Error("failed to resolve session", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			w.Header().Set(HeaderName, s.ID)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext извлекает сессию из контекста.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
