package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductsRepo struct {
	pool *pgxpool.Pool
}

// constructor function

func NewProductsRepo(pool *pgxpool.Pool) *ProductsRepo {
	return &ProductsRepo{
		pool: pool,
	}
}

// Create stamps the owner from the caller; a client-supplied owner is never
// consulted.
func (r *ProductsRepo) Create(ctx context.Context, ownerID string, req product.CreateRequest) (product.Product, error) {
	now := time.Now().UTC()

	p := product.Product{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, user_id, name, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.UserID, p.Name, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) ListByOwner(ctx context.Context, ownerID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, created_at, updated_at
		FROM products
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, ownerID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]product.Product, 0)

	for rows.Next() {
		var p product.Product

		err = rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, p)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

// Update never touches user_id; the owner set at creation is immutable.
func (r *ProductsRepo) Update(ctx context.Context, id string, req product.UpdateRequest) (product.Product, error) {
	var p product.Product

	err := r.pool.QueryRow(ctx,
		`UPDATE products
			SET name = $2,
					updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, name, created_at, updated_at`,
		id, req.Name,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}

		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	// dependent prices go first, in the same transaction
	_, err = tx.Exec(ctx, `DELETE FROM prices WHERE product_id = $1`, id)

	if err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return product.ErrNotFound
	}

	return tx.Commit(ctx)
}
