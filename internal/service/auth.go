package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
)

type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, fullName string) (string, session.Identity, error)
	SignIn(ctx context.Context, email, password string) (string, session.Identity, error)
	IsAdmin(ctx context.Context, userID, email string) bool
}

type AuthService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	profileRepo storage.ProfileStorage
	tokenTTL    time.Duration
	roleTimeout time.Duration
	adminEmails []string
}

func NewAuthService(
	log *slog.Logger,
	userRepo storage.UserStorage,
	profileRepo storage.ProfileStorage,
	tokenTTL, roleTimeout time.Duration,
	adminEmails []string,
) *AuthService {
	return &AuthService{
		log:         log,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokenTTL:    tokenTTL,
		roleTimeout: roleTimeout,
		adminEmails: adminEmails,
	}
}

// SignUp регистрирует пользователя и создаёт ему профиль покупателя.
// Пароль хэшируется через bcrypt, соль добавляется автоматически.
func (a *AuthService) SignUp(ctx context.Context, email, password, fullName string) (string, session.Identity, error) {
	const op = "service.AuthService.SignUp"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(slog.String("op", op), slog.String("email", email))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", session.Identity{}, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{Email: email, PassHash: passHash})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
			return "", session.Identity{}, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return "", session.Identity{}, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	profile := &models.Profile{UserID: user.ID, FullName: fullName, Role: models.RoleCustomer}
	if err := a.profileRepo.UpsertProfile(ctx, profile); err != nil {
		// пользователь уже создан, без профиля он просто останется без роли
		logger.Error("failed to create profile", slog.Any("error", err))
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", session.Identity{}, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user signed up", slog.String("userID", user.ID))
	return token, session.Identity{UserID: user.ID, Email: user.Email, Role: models.RoleCustomer}, nil
}

// SignIn проверяет пароль и выдаёт токен. Роль читается из профиля с ограничением по времени.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (string, session.Identity, error) {
	const op = "service.AuthService.SignIn"
	email = strings.ToLower(strings.TrimSpace(email))
	logger := a.log.With(slog.String("op", op), slog.String("email", email))

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", session.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", session.Identity{}, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", session.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", session.Identity{}, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user signed in", slog.String("userID", user.ID))
	return token, session.Identity{UserID: user.ID, Email: user.Email, Role: a.role(ctx, user.ID)}, nil
}

// IsAdmin: роль admin в профиле или адрес из списка администраторов.
func (a *AuthService) IsAdmin(ctx context.Context, userID, email string) bool {
	if session.IsAdmin("", email, a.adminEmails) {
		return true
	}
	return session.IsAdmin(a.role(ctx, userID), email, a.adminEmails)
}

// role возвращает пустую роль, если профиль не ответил вовремя.
func (a *AuthService) role(ctx context.Context, userID string) string {
	const op = "service.AuthService.role"

	if a.roleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.roleTimeout)
		defer cancel()
	}

	role, err := a.profileRepo.GetRole(ctx, userID)
	if err != nil {
		a.log.Warn("failed to fetch role", slog.String("op", op), slog.String("userID", userID), slog.Any("error", err))
		return ""
	}
	return role
}
