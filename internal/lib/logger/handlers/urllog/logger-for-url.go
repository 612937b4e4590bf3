package urllog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// SessionHeader заголовок, по которому клиент передаёт id сессии.
const SessionHeader = "X-Session-ID"

// CustomLoggerMiddleware пишет строку на каждый запрос: метод, путь, статус, длительность и сессию.
func CustomLoggerMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}
			// новая сессия видна только в ответе
			if sid := ww.Header().Get(SessionHeader); sid != "" {
				attrs = append(attrs, slog.String("session", sid))
			}
			log.Info("request completed", attrs...)
		})
	}
}
