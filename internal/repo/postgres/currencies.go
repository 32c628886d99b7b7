package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/currency"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CurrenciesRepo struct {
	pool *pgxpool.Pool
}

func NewCurrenciesRepo(pool *pgxpool.Pool) *CurrenciesRepo {
	return &CurrenciesRepo{
		pool: pool,
	}
}

func (r *CurrenciesRepo) Create(ctx context.Context, ownerID string, req currency.CreateRequest) (currency.Currency, error) {
	now := time.Now().UTC()

	c := currency.Currency{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		Code:      req.Code,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO currencies (id, user_id, code, name, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.UserID, c.Code, c.Name, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		return currency.Currency{}, err
	}

	return c, nil
}

func (r *CurrenciesRepo) ListByOwner(ctx context.Context, ownerID string) ([]currency.Currency, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, code, name, created_at, updated_at
		FROM currencies
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, ownerID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]currency.Currency, 0)

	for rows.Next() {
		var c currency.Currency

		err = rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, c)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CurrenciesRepo) GetByID(ctx context.Context, id string) (currency.Currency, error) {
	var c currency.Currency

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, code, name, created_at, updated_at FROM currencies WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return currency.Currency{}, currency.ErrNotFound
		}

		return currency.Currency{}, err
	}

	return c, nil
}

func (r *CurrenciesRepo) Update(ctx context.Context, id string, req currency.UpdateRequest) (currency.Currency, error) {
	var c currency.Currency

	err := r.pool.QueryRow(ctx,
		`UPDATE currencies
			SET code = $2,
					name = $3,
					updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, code, name, created_at, updated_at`,
		id, req.Code, req.Name,
	).Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return currency.Currency{}, currency.ErrNotFound
		}

		return currency.Currency{}, err
	}

	return c, nil
}

func (r *CurrenciesRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM prices WHERE currency_id = $1`, id)

	if err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `DELETE FROM currencies WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return currency.ErrNotFound
	}

	return tx.Commit(ctx)
}
