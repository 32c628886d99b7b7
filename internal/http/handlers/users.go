package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davegitonga/pricehub/internal/cache"
	"github.com/davegitonga/pricehub/internal/config"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/http/middlewares"
	"github.com/davegitonga/pricehub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	DeleteCascade(ctx context.Context, id string) error
}

// UsersHandler operates on the caller's own record only; the id always comes
// from the authenticated context, never from the URL.
type UsersHandler struct {
	repo  UserStore
	cache *cache.Cache
}

func NewUsersHandler(repo UserStore, c *cache.Cache) *UsersHandler {
	return &UsersHandler{repo: repo, cache: c}
}

func (h *UsersHandler) Show(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Unauthenticated.")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.loadUser(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, NewUserResource(u))
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Unauthenticated.")
		return
	}

	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	// partial update: untouched fields keep their stored values

	if req.Name != "" {
		u.Name = req.Name
	}

	if req.Email != "" {
		u.Email = req.Email
	}

	if req.Password != "" {
		hash, err := security.HashPassword(req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		u.PasswordHash = hash
	}

	updated, err := h.repo.Update(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondEmailTaken(ctx)
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	h.cacheDelete(userID)

	ctx.JSON(http.StatusOK, NewUserResource(updated))
}

func (h *UsersHandler) Destroy(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Unauthenticated.")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	err := h.repo.DeleteCascade(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	h.cacheDelete(userID)

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) loadUser(ctx context.Context, id string) (user.User, error) {
	key := "user:" + id

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			if u, ok := v.(user.User); ok {
				return u, nil
			}
		}
	}

	u, err := h.repo.GetByID(ctx, id)

	if err != nil {
		return user.User{}, err
	}

	if h.cache != nil {
		h.cache.Set(key, u)
	}

	return u, nil
}

func (h *UsersHandler) cacheDelete(id string) {
	if h.cache != nil {
		h.cache.Delete("user:" + id)
	}
}
