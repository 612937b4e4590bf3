package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressStorage описывает методы для работы с адресами доставки.
// Единственность адреса по умолчанию базой не гарантируется.
type AddressStorage interface {
	GetAddressesByUserID(ctx context.Context, userID string) ([]*models.Address, error)
	GetAddressByID(ctx context.Context, id string) (*models.Address, error)
	GetDefaultAddress(ctx context.Context, userID string) (*models.Address, error)
	CreateAddress(ctx context.Context, addr *models.Address) error
	DeleteAddress(ctx context.Context, userID, id string) error
	// UnsetDefaultAddresses снимает флаг по умолчанию со всех адресов пользователя.
	UnsetDefaultAddresses(ctx context.Context, userID string) error
	SetDefaultAddress(ctx context.Context, userID, id string) error
}

type addressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) AddressStorage {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, full_name, phone, wilaya, COALESCE(commune, ''), address_line1, COALESCE(label, ''), is_default, created_at`

func scanAddress(row rowScanner) (*models.Address, error) {
	a := &models.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Wilaya, &a.Commune, &a.AddressLine1, &a.Label, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAddressesByUserID возвращает адреса, адрес по умолчанию первым.
func (r *addressRepository) GetAddressesByUserID(ctx context.Context, userID string) ([]*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) GetAddressByID(ctx context.Context, id string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetDefaultAddress берет самый свежий адрес с флагом, если их вдруг несколько.
func (r *addressRepository) GetDefaultAddress(ctx context.Context, userID string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_default ORDER BY created_at DESC LIMIT 1`
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *addressRepository) CreateAddress(ctx context.Context, addr *models.Address) error {
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	query := `INSERT INTO addresses (id, user_id, full_name, phone, wilaya, commune, address_line1, label, is_default, created_at)
	          VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''), $9, NOW())
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		addr.ID, addr.UserID, addr.FullName, addr.Phone, addr.Wilaya, addr.Commune, addr.AddressLine1, addr.Label, addr.IsDefault,
	).Scan(&addr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *addressRepository) DeleteAddress(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM addresses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return expectAffected(res, ErrAddressNotFound)
}

func (r *addressRepository) UnsetDefaultAddresses(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE addresses SET is_default = FALSE WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}
	return nil
}

func (r *addressRepository) SetDefaultAddress(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	return expectAffected(res, ErrAddressNotFound)
}
