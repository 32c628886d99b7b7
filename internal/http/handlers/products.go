package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davegitonga/pricehub/internal/authz"
	"github.com/davegitonga/pricehub/internal/config"
	"github.com/davegitonga/pricehub/internal/domain/product"
	"github.com/davegitonga/pricehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProductStore interface {
	Create(ctx context.Context, ownerID string, req product.CreateRequest) (product.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	Update(ctx context.Context, id string, req product.UpdateRequest) (product.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	repo ProductStore
}

func NewProductsHandler(repo ProductStore) *ProductsHandler {
	return &ProductsHandler{repo: repo}
}

// requireUser resolves the authenticated identity once per request; store
// operations receive it explicitly.
func requireUser(ctx *gin.Context) (string, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Unauthenticated.")
		return "", false
	}

	return userID, true
}

func (h *ProductsHandler) Index(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	products, err := h.repo.ListByOwner(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list products")
		return
	}

	items := make([]ProductResource, 0, len(products))

	for _, p := range products {
		items = append(items, NewProductResource(p))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *ProductsHandler) Store(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	var req product.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create product")
		return
	}

	ctx.JSON(http.StatusCreated, NewProductResource(p))
}

func (h *ProductsHandler) Show(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}

		RespondInternal(ctx, "Could not fetch product")
		return
	}

	if err := authz.Require(userID, p, "view", "product"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, NewProductResource(p))
}

func (h *ProductsHandler) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// ownership gate comes before body validation: a non-owner gets 403 even
	// with a malformed payload
	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}

		RespondInternal(ctx, "Could not update product")
		return
	}

	if err := authz.Require(userID, p, "update", "product"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	var req product.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(cctx, p.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not update product")
		return
	}

	ctx.JSON(http.StatusOK, NewProductResource(updated))
}

func (h *ProductsHandler) Destroy(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}

		RespondInternal(ctx, "Could not delete product")
		return
	}

	if err := authz.Require(userID, p, "delete", "product"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	err = h.repo.Delete(cctx, p.ID)

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}

		RespondInternal(ctx, "Could not delete product")
		return
	}

	ctx.Status(http.StatusNoContent)
}
