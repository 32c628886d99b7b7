package postgres

import (
	"context"
	"errors"

	"github.com/davegitonga/pricehub/internal/domain/token"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokensRepo struct {
	pool *pgxpool.Pool
}

func NewTokensRepo(pool *pgxpool.Pool) *TokensRepo {
	return &TokensRepo{pool: pool}
}

func (r *TokensRepo) Create(ctx context.Context, t token.Token) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_tokens (id, user_id, token_hash, scope, created_at, expires_at, revoked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.UserID, t.TokenHash, t.Scope, t.CreatedAt, t.ExpiresAt, t.RevokedAt,
	)
	return err
}

func (r *TokensRepo) GetByID(ctx context.Context, id string) (token.Token, error) {
	var t token.Token

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, scope, created_at, expires_at, revoked_at
		FROM access_tokens WHERE id = $1`, id,
	).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.Scope,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return token.Token{}, token.ErrNotFound
		}

		return token.Token{}, err
	}

	return t, nil
}

// Revoke is idempotent; used on logout and as the lazy cleanup path when an
// expired token is presented.
func (r *TokensRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE access_tokens
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`, id)

	return err
}
