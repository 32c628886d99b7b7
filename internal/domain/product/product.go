package product

import (
	"errors"
	"time"
)

type Product struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID satisfies authz.Owned.
func (p Product) OwnerID() string {
	return p.UserID
}

var ErrNotFound = errors.New("product not found")

type CreateRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type UpdateRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}
