package handlers

import (
	"strings"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/currency"
	"github.com/davegitonga/pricehub/internal/domain/price"
	"github.com/davegitonga/pricehub/internal/domain/product"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Response shapes. Related entities are sparse: a nil pointer / nil slice is
// dropped from the payload entirely rather than rendered as null.

type UserResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductResource struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CurrencyResource struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`

	User   *UserResource   `json:"user,omitempty"`
	Prices []PriceResource `json:"prices,omitempty"`
}

type PriceResource struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	CurrencyID string  `json:"currency_id"`
	Amount     float64 `json:"amount"`

	Currency *CurrencyResource `json:"currency,omitempty"`
}

func NewUserResource(u user.User) UserResource {
	return UserResource{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewProductResource(p product.Product) ProductResource {
	return ProductResource{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewCurrencyResource(c currency.Currency) CurrencyResource {
	return CurrencyResource{
		ID:     c.ID,
		Code:   c.Code,
		Name:   c.Name,
		UserID: c.UserID,
	}
}

func NewPriceResource(p price.Price) PriceResource {
	return PriceResource{
		ID:         p.ID,
		ProductID:  p.ProductID,
		CurrencyID: p.CurrencyID,
		Amount:     p.Amount,
	}
}

func NewPriceResources(prices []price.Price) []PriceResource {
	out := make([]PriceResource, 0, len(prices))

	for _, p := range prices {
		out = append(out, NewPriceResource(p))
	}

	return out
}

// includeSet parses ?include=user,prices into a lookup set.
func includeSet(ctx *gin.Context) map[string]bool {
	raw := ctx.Query("include")

	if raw == "" {
		return nil
	}

	set := make(map[string]bool)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)

		if part != "" {
			set[part] = true
		}
	}

	return set
}
