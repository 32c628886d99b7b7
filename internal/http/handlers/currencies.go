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
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type CurrencyStore interface {
	Create(ctx context.Context, ownerID string, req currency.CreateRequest) (currency.Currency, error)
	ListByOwner(ctx context.Context, ownerID string) ([]currency.Currency, error)
	GetByID(ctx context.Context, id string) (currency.Currency, error)
	Update(ctx context.Context, id string, req currency.UpdateRequest) (currency.Currency, error)
	Delete(ctx context.Context, id string) error
}

// CurrencyPriceLister feeds the sparse `prices` include on show.
type CurrencyPriceLister interface {
	ListByCurrency(ctx context.Context, currencyID string) ([]price.Price, error)
}

type CurrencyUserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type CurrenciesHandler struct {
	repo   CurrencyStore
	prices CurrencyPriceLister
	users  CurrencyUserReader
}

func NewCurrenciesHandler(repo CurrencyStore, prices CurrencyPriceLister, users CurrencyUserReader) *CurrenciesHandler {
	return &CurrenciesHandler{repo: repo, prices: prices, users: users}
}

func (h *CurrenciesHandler) Index(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	currencies, err := h.repo.ListByOwner(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list currencies")
		return
	}

	items := make([]CurrencyResource, 0, len(currencies))

	for _, c := range currencies {
		items = append(items, NewCurrencyResource(c))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *CurrenciesHandler) Store(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	var req currency.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create currency")
		return
	}

	ctx.JSON(http.StatusCreated, NewCurrencyResource(c))
}

func (h *CurrenciesHandler) Show(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, currency.ErrNotFound) {
			RespondNotFound(ctx, "Currency not found")
			return
		}

		RespondInternal(ctx, "Could not fetch currency")
		return
	}

	if err := authz.Require(userID, c, "view", "currency"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	resource := NewCurrencyResource(c)

	// sparse inclusion: related entities appear only when asked for
	includes := includeSet(ctx)

	if includes["user"] && h.users != nil {
		owner, err := h.users.GetByID(cctx, c.UserID)

		if err == nil {
			ur := NewUserResource(owner)
			resource.User = &ur
		}
	}

	if includes["prices"] && h.prices != nil {
		priceRows, err := h.prices.ListByCurrency(cctx, c.ID)

		if err != nil {
			RespondInternal(ctx, "Could not fetch currency")
			return
		}

		resource.Prices = NewPriceResources(priceRows)
	}

	ctx.JSON(http.StatusOK, resource)
}

func (h *CurrenciesHandler) Update(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, currency.ErrNotFound) {
			RespondNotFound(ctx, "Currency not found")
			return
		}

		RespondInternal(ctx, "Could not update currency")
		return
	}

	if err := authz.Require(userID, c, "update", "currency"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	var req currency.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(cctx, c.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not update currency")
		return
	}

	ctx.JSON(http.StatusOK, NewCurrencyResource(updated))
}

func (h *CurrenciesHandler) Destroy(ctx *gin.Context) {
	userID, ok := requireUser(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, currency.ErrNotFound) {
			RespondNotFound(ctx, "Currency not found")
			return
		}

		RespondInternal(ctx, "Could not delete currency")
		return
	}

	if err := authz.Require(userID, c, "delete", "currency"); err != nil {
		RespondForbidden(ctx, err.Error())
		return
	}

	err = h.repo.Delete(cctx, c.ID)

	if err != nil {
		if errors.Is(err, currency.ErrNotFound) {
			RespondNotFound(ctx, "Currency not found")
			return
		}

		RespondInternal(ctx, "Could not delete currency")
		return
	}

	ctx.Status(http.StatusNoContent)
}
