package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileStorage описывает методы для работы с таблицей profiles.
type ProfileStorage interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UpsertProfile создает профиль или обновляет имя, телефон и аватар. Роль при обновлении не меняется.
	UpsertProfile(ctx context.Context, p *models.Profile) error
	GetRole(ctx context.Context, userID string) (string, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileStorage {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT user_id, COALESCE(full_name, ''), COALESCE(phone, ''), COALESCE(avatar_url, ''), role, updated_at
	          FROM profiles WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)
	if err := row.Scan(&p.UserID, &p.FullName, &p.Phone, &p.AvatarURL, &p.Role, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) UpsertProfile(ctx context.Context, p *models.Profile) error {
	if p.Role == "" {
		p.Role = models.RoleCustomer
	}
	query := `INSERT INTO profiles (user_id, full_name, phone, avatar_url, role, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          ON CONFLICT (user_id) DO UPDATE
	          SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, avatar_url = EXCLUDED.avatar_url, updated_at = NOW()
	          RETURNING role, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.UserID, p.FullName, p.Phone, p.AvatarURL, p.Role).Scan(&p.Role, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	if err := r.db.QueryRowContext(ctx, "SELECT role FROM profiles WHERE user_id = $1", userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	return role, nil
}
