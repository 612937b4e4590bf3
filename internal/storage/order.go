package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ одной операцией, позиции сохраняются как JSON-снимок.
	CreateOrder(ctx context.Context, order *models.Order) error
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// ListOrders возвращает все заказы магазина (для администратора).
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, full_name, phone, address, items, delivery_method, shipping_cost, total_amount, status, created_at`

// CreateOrder вставляет новый заказ в таблицу orders.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	query := `INSERT INTO orders (id, user_id, full_name, phone, address, items, delivery_method, shipping_cost, total_amount, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	          RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		order.ID, order.UserID, order.FullName, order.Phone, order.Address, items,
		string(order.DeliveryMethod), order.ShippingCost, order.TotalAmount, string(order.Status),
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return expectAffected(res, ErrOrderNotFound)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order          models.Order
		items          []byte
		deliveryMethod string
		status         string
	)
	err := row.Scan(&order.ID, &order.UserID, &order.FullName, &order.Phone, &order.Address, &items,
		&deliveryMethod, &order.ShippingCost, &order.TotalAmount, &status, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}
	order.DeliveryMethod = models.DeliveryMethod(deliveryMethod)
	order.Status = models.OrderStatus(status)
	return &order, nil
}
