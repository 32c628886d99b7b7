package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davegitonga/pricehub/internal/authz"
	"github.com/davegitonga/pricehub/internal/config"
	"github.com/davegitonga/pricehub/internal/domain/currency"
	"github.com/davegitonga/pricehub/internal/domain/price"
	"github.com/davegitonga/pricehub/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type PriceStore interface {
	Create(ctx context.Context, ownerID string, req price.CreateRequest) (price.Price, error)
	ListByOwner(ctx context.Context, ownerID string) ([]price.Price, error)
	GetByID(ctx context.Context, id string) (price.Price, error)
	Update(ctx context.Context, id string, ownerID string, req price.UpdateRequest) (price.Price, error)
	Delete(ctx context.Context, id string) error
}

type ProductReader interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

type CurrencyReader interface {
	GetByID(ctx context.Context, id string) (currency.Currency, error)
}

type PricesHandler struct {
	repo       PriceStore
	products   ProductReader
	currencies CurrencyReader
}

func NewPricesHandler(repo PriceStore, products ProductReader, currencies CurrencyReader) *PricesHandler {
	return &PricesHandler{repo: repo, products: products, currencies: currencies}
}

func (h *PricesHandler) Index(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	prices, err := h.repo.ListByOwner(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list prices")
		return
	}

	items := NewPriceResources(prices)

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *PricesHandler) Store(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	var req price.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// both referenced rows must exist and belong to the requester before
	// anything is written; no partial writes
	if !h.checkReferences(ctx, cctx, userID, "create", req.ProductID, req.CurrencyID) {
		return
	}

	p, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		if errors.Is(err, price.ErrDuplicatePair) {
			respondDuplicatePair(ctx)
			return
		}

		RespondInternal(ctx, "Could not create price")
		return
	}

	ctx.JSON(http.StatusCreated, NewPriceResource(p))
}

func (h *PricesHandler) Show(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, price.ErrNotFound) {
			RespondNotFound(ctx, "Price not found")
			return
		}

		RespondInternal(ctx, "Could not fetch price")
		return
	}

	if err := authz.Require(userID, p, "view", "price"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	resource := NewPriceResource(p)

	if includeSet(ctx)["currency"] && h.currencies != nil {
		c, err := h.currencies.GetByID(cctx, p.CurrencyID)

		if err == nil {
			cr := NewCurrencyResource(c)
			resource.Currency = &cr
		}
	}

	ctx.JSON(http.StatusOK, resource)
}

func (h *PricesHandler) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, price.ErrNotFound) {
			RespondNotFound(ctx, "Price not found")
			return
		}

		RespondInternal(ctx, "Could not update price")
		return
	}

	if err := authz.Require(userID, p, "update", "price"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	var req price.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// re-pointing a price re-runs the same cross-entity check as create
	if !h.checkReferences(ctx, cctx, userID, "update", req.ProductID, req.CurrencyID) {
		return
	}

	updated, err := h.repo.Update(cctx, p.ID, userID, req)

	if err != nil {
		if errors.Is(err, price.ErrDuplicatePair) {
			respondDuplicatePair(ctx)
			return
		}

		RespondInternal(ctx, "Could not update price")
		return
	}

	ctx.JSON(http.StatusOK, NewPriceResource(updated))
}

func (h *PricesHandler) Destroy(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, price.ErrNotFound) {
			RespondNotFound(ctx, "Price not found")
			return
		}

		RespondInternal(ctx, "Could not delete price")
		return
	}

	if err := authz.Require(userID, p, "delete", "price"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	err = h.repo.Delete(cctx, p.ID)

	if err != nil {
		if errors.Is(err, price.ErrNotFound) {
			RespondNotFound(ctx, "Price not found")
			return
		}

		RespondInternal(ctx, "Could not delete price")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// checkReferences verifies both referenced rows exist (422, mirroring an
// exists-rule failure) and belong to the requester (403). Responds and
// returns false on failure.
func (h *PricesHandler) checkReferences(ctx *gin.Context, cctx context.Context, userID, action, productID, currencyID string) bool {
	prod, err := h.products.GetByID(cctx, productID)

	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondMissingReference(ctx, "product_id")
			return false
		}

		RespondInternal(ctx, "Could not "+action+" price")
		return false
	}

	if prod.OwnerID() != userID {
		ferr := &authz.ForbiddenError{Action: action, Resource: "price"}
		RespondForbidden(ctx, ferr.Error())
		return false
	}

	cur, err := h.currencies.GetByID(cctx, currencyID)

	if err != nil {
		if errors.Is(err, currency.ErrNotFound) {
			respondMissingReference(ctx, "currency_id")
			return false
		}

		RespondInternal(ctx, "Could not "+action+" price")
		return false
	}

	if cur.OwnerID() != userID {
		ferr := &authz.ForbiddenError{Action: action, Resource: "price"}
		RespondForbidden(ctx, ferr.Error())
		return false
	}

	return true
}

func respondMissingReference(ctx *gin.Context, field string) {
	RespondUnprocessable(ctx, "Invalid request body", gin.H{
		"fields": []FieldError{
			{
				Field:   field,
				Rule:    "exists",
				Message: "does not exist",
			},
		},
	})
}

func respondDuplicatePair(ctx *gin.Context) {
	RespondUnprocessable(ctx, "Invalid request body", gin.H{
		"fields": []FieldError{
			{
				Field:   "currency_id",
				Rule:    "unique",
				Message: "has already been taken for this product",
			},
		},
	})
}
