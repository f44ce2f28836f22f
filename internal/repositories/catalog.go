package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/shared"
)

// CatalogRepository reads the local mirror of the storefront catalog.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindCandidates returns up to limit in-stock products ordered by id.
func (r *CatalogRepository) FindCandidates(ctx context.Context, limit int) ([]models.CatalogProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, price, stock_status, category_tags
		FROM products
		WHERE stock_status = ?
		ORDER BY id ASC
		LIMIT ?
	`, models.StockInStock, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	products := []models.CatalogProduct{}
	for rows.Next() {
		var (
			p    models.CatalogProduct
			tags string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.StockStatus, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &p.CategoryTags); err != nil || p.CategoryTags == nil {
			p.CategoryTags = []string{}
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// Upsert writes products into the mirror, replacing rows with the same id.
// It returns the number of products written.
func (r *CatalogRepository) Upsert(ctx context.Context, products []models.CatalogProduct) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, title, description, price, stock_status, category_tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price = excluded.price,
			stock_status = excluded.stock_status,
			category_tags = excluded.category_tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range products {
		if p.ID <= 0 {
			return 0, fmt.Errorf("%w: product id must be positive", shared.ErrValidation)
		}
		tags := p.CategoryTags
		if tags == nil {
			tags = []string{}
		}
		encoded, err := json.Marshal(tags)
		if err != nil {
			return 0, fmt.Errorf("failed to encode tags for product %d: %w", p.ID, err)
		}
		status := p.StockStatus
		if status == "" {
			status = models.StockInStock
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Description, p.Price, status, string(encoded), now); err != nil {
			return 0, fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit products: %w", err)
	}
	return len(products), nil
}

// Count returns the number of mirrored products.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
