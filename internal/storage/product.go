package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает методы для работы с таблицей products.
type ProductStorage interface {
	// ListProducts возвращает весь каталог, новые товары первыми.
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), p.price, p.category, p.discount, p.is_new,
	p.created_at, p.sizes, p.colors, p.image, p.images`

// productRow — промежуточная структура для сканирования nullable-колонок
type productRow struct {
	p        models.Product
	discount sql.NullInt64
	created  sql.NullTime
}

func (r *productRow) dest() []any {
	return []any{
		&r.p.ID, &r.p.Name, &r.p.Description, &r.p.Price, &r.p.Category, &r.discount, &r.p.IsNew,
		&r.created, pq.Array(&r.p.Sizes), pq.Array(&r.p.Colors), &r.p.Image, pq.Array(&r.p.Images),
	}
}

func (r *productRow) product() *models.Product {
	p := r.p
	if r.discount.Valid {
		d := int(r.discount.Int64)
		p.Discount = &d
	}
	if r.created.Valid {
		t := r.created.Time
		p.CreatedAt = &t
	}
	return &p
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var row productRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, row.product())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	var row productRow
	if err := r.db.QueryRowContext(ctx, query, id).Scan(row.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return row.product(), nil
}

// CreateProduct вставляет товар; если ID пустой, он генерируется.
func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `INSERT INTO products (id, name, description, price, category, discount, is_new, sizes, colors, image, images, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	          RETURNING created_at`
	var created sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Discount, p.IsNew,
		pq.Array(p.Sizes), pq.Array(p.Colors), p.Image, pq.Array(p.Images),
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if created.Valid {
		p.CreatedAt = &created.Time
	}
	return nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `UPDATE products
	          SET name = $2, description = $3, price = $4, category = $5, discount = $6, is_new = $7,
	              sizes = $8, colors = $9, image = $10, images = $11
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Discount, p.IsNew,
		pq.Array(p.Sizes), pq.Array(p.Colors), p.Image, pq.Array(p.Images),
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectAffected(res, ErrProductNotFound)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectAffected(res, ErrProductNotFound)
}

// expectAffected возвращает notFound, если запрос не затронул ни одной строки
func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
