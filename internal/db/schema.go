package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Uniqueness lives here on purpose: application-level pre-checks cannot close
// the race between two concurrent creators, the constraints do.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS access_tokens (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id),
	token_hash TEXT NOT NULL,
	scope      TEXT NOT NULL DEFAULT 'all',
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ,
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS access_tokens_user_id_idx ON access_tokens(user_id);

CREATE TABLE IF NOT EXISTS products (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS products_user_id_idx ON products(user_id);

CREATE TABLE IF NOT EXISTS currencies (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id),
	code       VARCHAR(3) NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS currencies_user_id_idx ON currencies(user_id);

CREATE TABLE IF NOT EXISTS prices (
	id          UUID PRIMARY KEY,
	product_id  UUID NOT NULL REFERENCES products(id),
	currency_id UUID NOT NULL REFERENCES currencies(id),
	amount      NUMERIC(10,2) NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (product_id, currency_id)
);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)

	return err
}
