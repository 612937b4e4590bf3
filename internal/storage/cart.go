package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с таблицей cart_items.
// Это удаленное зеркало корзины, источником истины остается память сессии.
type CartStorage interface {
	// GetCartLines возвращает корзину пользователя вместе с товарами.
	// Строки, товар которых удален из каталога, отбрасываются.
	GetCartLines(ctx context.Context, userID string) ([]models.CartLine, error)
	GetCartItem(ctx context.Context, userID, productID string) (*models.CartItemRow, error)
	InsertCartItem(ctx context.Context, item *models.CartItemRow) error
	// UpdateCartItemQuantity обновляет количество по ID строки.
	UpdateCartItemQuantity(ctx context.Context, id string, quantity int) error
	// SetCartItemQuantity обновляет количество по паре (пользователь, товар).
	SetCartItemQuantity(ctx context.Context, userID, productID string, quantity int) error
	DeleteCartItem(ctx context.Context, userID, productID string) error
	DeleteCartItems(ctx context.Context, userID string) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	query := `
		SELECT c.quantity, COALESCE(c.size, ''), COALESCE(c.color, ''), ` + productColumns + `
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var (
			line models.CartLine
			row  productRow
		)
		dest := append([]any{&line.Quantity, &line.SelectedSize, &line.SelectedColor}, row.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		line.Product = *row.product()
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) GetCartItem(ctx context.Context, userID, productID string) (*models.CartItemRow, error) {
	item := &models.CartItemRow{}
	query := `SELECT id, user_id, product_id, quantity, COALESCE(size, ''), COALESCE(color, '')
	          FROM cart_items WHERE user_id = $1 AND product_id = $2`
	row := r.db.QueryRowContext(ctx, query, userID, productID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.Size, &item.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) InsertCartItem(ctx context.Context, item *models.CartItemRow) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `INSERT INTO cart_items (id, user_id, product_id, quantity, size, color, created_at)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NOW())`
	_, err := r.db.ExecContext(ctx, query, item.ID, item.UserID, item.ProductID, item.Quantity, item.Size, item.Color)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return expectAffected(res, ErrCartItemNotFound)
}

func (r *cartRepository) SetCartItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3",
		quantity, userID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to set cart item quantity: %w", err)
	}
	return expectAffected(res, ErrCartItemNotFound)
}

// DeleteCartItem идемпотентен: отсутствие строки ошибкой не считается.
func (r *cartRepository) DeleteCartItem(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2", userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteCartItems(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}
