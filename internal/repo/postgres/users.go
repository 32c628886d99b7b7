package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		// the unique constraint closes the race two concurrent registers open
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.scanOne(ctx, "users.get_by_email", `SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.scanOne(ctx, "users.get_by_id", `SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) scanOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users
				SET name = $2,
						email = $3,
						password_hash = $4,
						updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			u.ID, u.Name, u.Email, u.PasswordHash,
		).Scan(&u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

// DeleteCascade removes a user and everything the user owns in one
// transaction: prices hanging off their products or currencies, then the
// products and currencies themselves, then issued tokens, then the row.
func (r *UsersRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.observe("users.delete_cascade", func() error {
		return r.deleteCascade(ctx, id)
	})
}

func (r *UsersRepo) deleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	steps := []string{
		`DELETE FROM prices USING products
			WHERE prices.product_id = products.id AND products.user_id = $1`,
		`DELETE FROM prices USING currencies
			WHERE prices.currency_id = currencies.id AND currencies.user_id = $1`,
		`DELETE FROM products WHERE user_id = $1`,
		`DELETE FROM currencies WHERE user_id = $1`,
		`DELETE FROM access_tokens WHERE user_id = $1`,
	}

	for _, q := range steps {
		_, err = tx.Exec(ctx, q, id)

		if err != nil {
			return err
		}
	}

	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return tx.Commit(ctx)
}
