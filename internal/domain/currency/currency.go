package currency

import (
	"errors"
	"time"
)

type Currency struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID satisfies authz.Owned.
func (c Currency) OwnerID() string {
	return c.UserID
}

var ErrNotFound = errors.New("currency not found")

type CreateRequest struct {
	Code string `json:"code" binding:"required,max=3"`
	Name string `json:"name" binding:"required,max=255"`
}

type UpdateRequest struct {
	Code string `json:"code" binding:"required,max=3"`
	Name string `json:"name" binding:"required,max=255"`
}
