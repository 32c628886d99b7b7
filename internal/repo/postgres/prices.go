package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/price"
	"github.com/davegitonga/pricehub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PricesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPricesRepo(pool *pgxpool.Pool, prom *observability.Prom) *PricesRepo {
	return &PricesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *PricesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// ListByOwner returns prices whose product AND currency both belong to the
// owner; a price reachable through only one relation is never visible.
func (r *PricesRepo) ListByOwner(ctx context.Context, ownerID string) ([]price.Price, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.product_id, p.currency_id, p.amount, p.created_at, p.updated_at, pr.user_id
		FROM prices p
		JOIN products pr ON pr.id = p.product_id
		JOIN currencies c ON c.id = p.currency_id
		WHERE pr.user_id = $1 AND c.user_id = $1
		ORDER BY p.created_at ASC, p.id ASC`, ownerID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanPrices(rows)
}

func (r *PricesRepo) ListByCurrency(ctx context.Context, currencyID string) ([]price.Price, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.product_id, p.currency_id, p.amount, p.created_at, p.updated_at, pr.user_id
		FROM prices p
		JOIN products pr ON pr.id = p.product_id
		WHERE p.currency_id = $1
		ORDER BY p.created_at ASC, p.id ASC`, currencyID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanPrices(rows)
}

func scanPrices(rows pgx.Rows) ([]price.Price, error) {
	output := make([]price.Price, 0)

	for rows.Next() {
		var p price.Price

		err := rows.Scan(&p.ID, &p.ProductID, &p.CurrencyID, &p.Amount, &p.CreatedAt, &p.UpdatedAt, &p.OwnerUserID)

		if err != nil {
			return nil, err
		}

		output = append(output, p)
	}

	err := rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *PricesRepo) GetByID(ctx context.Context, id string) (price.Price, error) {
	var p price.Price

	err := r.observe("prices.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT p.id, p.product_id, p.currency_id, p.amount, p.created_at, p.updated_at, pr.user_id
			FROM prices p
			JOIN products pr ON pr.id = p.product_id
			WHERE p.id = $1`, id,
		).Scan(&p.ID, &p.ProductID, &p.CurrencyID, &p.Amount, &p.CreatedAt, &p.UpdatedAt, &p.OwnerUserID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return price.Price{}, price.ErrNotFound
		}

		return price.Price{}, err
	}

	return p, nil
}

// Create relies on the (product_id, currency_id) unique constraint rather
// than a pre-check; two concurrent creators race and exactly one wins.
func (r *PricesRepo) Create(ctx context.Context, ownerID string, req price.CreateRequest) (price.Price, error) {
	now := time.Now().UTC()

	p := price.Price{
		ID:          uuid.NewString(),
		ProductID:   req.ProductID,
		CurrencyID:  req.CurrencyID,
		Amount:      *req.Amount,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerUserID: ownerID,
	}

	err := r.observe("prices.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO prices (id, product_id, currency_id, amount, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.ProductID, p.CurrencyID, p.Amount, p.CreatedAt, p.UpdatedAt)
		return execErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return price.Price{}, price.ErrDuplicatePair
		}

		return price.Price{}, err
	}

	return p, nil
}

func (r *PricesRepo) Update(ctx context.Context, id string, ownerID string, req price.UpdateRequest) (price.Price, error) {
	var p price.Price

	err := r.observe("prices.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE prices
				SET product_id = $2,
						currency_id = $3,
						amount = $4,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, product_id, currency_id, amount, created_at, updated_at`,
			id, req.ProductID, req.CurrencyID, *req.Amount,
		).Scan(&p.ID, &p.ProductID, &p.CurrencyID, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return price.Price{}, price.ErrNotFound
		}

		if IsUniqueViolation(err) {
			return price.Price{}, price.ErrDuplicatePair
		}

		return price.Price{}, err
	}

	p.OwnerUserID = ownerID

	return p, nil
}

func (r *PricesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM prices WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return price.ErrNotFound
	}

	return nil
}
