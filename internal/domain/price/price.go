package price

import (
	"errors"
	"time"
)

type Price struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CurrencyID string    `json:"currency_id"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// owner of the referenced product, filled by the repo join; a price has
	// no user_id column of its own
	OwnerUserID string `json:"-"`
}

// OwnerID satisfies authz.Owned; ownership is transitive through the product.
func (p Price) OwnerID() string {
	return p.OwnerUserID
}

var (
	ErrNotFound      = errors.New("price not found")
	ErrDuplicatePair = errors.New("price already exists for this product and currency")
)

const (
	MinAmount = -99999999.99
	MaxAmount = 99999999.99
)

type CreateRequest struct {
	ProductID  string   `json:"product_id" binding:"required,uuid"`
	CurrencyID string   `json:"currency_id" binding:"required,uuid"`
	Amount     *float64 `json:"amount" binding:"required,gte=-99999999.99,lte=99999999.99"`
}

type UpdateRequest struct {
	ProductID  string   `json:"product_id" binding:"required,uuid"`
	CurrencyID string   `json:"currency_id" binding:"required,uuid"`
	Amount     *float64 `json:"amount" binding:"required,gte=-99999999.99,lte=99999999.99"`
}
