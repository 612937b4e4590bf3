package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
)

// SignUpRequest запрос регистрации с тегами валидации.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=120"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResponse — токен и пользователь, привязанный к сессии.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SessionRotator выдаёт сессии новый id перед привязкой пользователя.
type SessionRotator interface {
	Rotate(ctx context.Context, s *session.Session) (*session.Session, error)
}

type MeResponse struct {
	User *UserResponse `json:"user"`
}

func userResponse(sess *session.Session) *UserResponse {
	id := sess.Identity()
	if id == nil {
		return nil
	}
	return &UserResponse{ID: id.UserID, Email: id.Email, Role: id.Role, IsAdmin: sess.IsAdmin()}
}

// SignUpHandler обрабатывает POST /api/auth/signup
func SignUpHandler(log *slog.Logger, authService service.AuthServiceInterface, sessions SessionRotator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignUpHandler"
		logger := log.With(slog.String("op", op))

		var req SignUpRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		token, identity, err := authService.SignUp(r.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		bindIdentity(w, r, logger, sessions, token, identity, http.StatusCreated)
	}
}

// SignInHandler обрабатывает POST /api/auth/signin.
// После входа корзина сессии заменяется корзиной пользователя из базы.
func SignInHandler(log *slog.Logger, authService service.AuthServiceInterface, sessions SessionRotator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignInHandler"
		logger := log.With(slog.String("op", op))

		var req SignInRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		token, identity, err := authService.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		bindIdentity(w, r, logger, sessions, token, identity, http.StatusOK)
	}
}

// bindIdentity привязывает пользователя к сессии с новым id; прежний id клиента
// остаётся гостевым. Новый id уходит в заголовке ответа.
func bindIdentity(w http.ResponseWriter, r *http.Request, logger *slog.Logger, sessions SessionRotator, token string, identity session.Identity, status int) {
	prev, ok := sessionFrom(w, r, logger)
	if !ok {
		return
	}
	sess, err := sessions.Rotate(r.Context(), prev)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	w.Header().Set(session.HeaderName, sess.ID)

	// загрузка корзины не должна обрываться вместе с запросом
	if err := sess.SignIn(context.WithoutCancel(r.Context()), identity); err != nil {
		// корзина остаётся пустой, вход при этом состоялся
		logger.Warn("cart fetch after sign-in failed", slog.Any("error", err))
	}
	writeJSON(w, logger, status, AuthResponse{
		Token: token,
		User:  UserResponse{ID: identity.UserID, Email: identity.Email, Role: identity.Role, IsAdmin: sess.IsAdmin()},
	})
}

// SignOutHandler обрабатывает POST /api/auth/signout
func SignOutHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignOutHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		if err := sess.SignOut(r.Context()); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MeHandler обрабатывает GET /api/auth/me; для гостя user = null.
func MeHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MeHandler"
		logger := log.With(slog.String("op", op))

		sess, ok := sessionFrom(w, r, logger)
		if !ok {
			return
		}
		writeJSON(w, logger, http.StatusOK, MeResponse{User: userResponse(sess)})
	}
}
