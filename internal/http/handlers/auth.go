package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davegitonga/pricehub/internal/auth"
	"github.com/davegitonga/pricehub/internal/config"
	"github.com/davegitonga/pricehub/internal/domain/token"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/http/middlewares"
	"github.com/davegitonga/pricehub/internal/observability"
	"github.com/davegitonga/pricehub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
}

type TokenWriter interface {
	Create(ctx context.Context, t token.Token) error
	Revoke(ctx context.Context, id string) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	tokens     TokenWriter
	manager    *auth.Manager
	metrics    *observability.Prom
}

func NewAuthHandler(users UserReader, userWriter UserWriter, tokens TokenWriter, manager *auth.Manager, metrics *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		tokens:     tokens,
		manager:    manager,
		metrics:    metrics,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// deliberately slow; never cached or precomputed
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondEmailTaken(ctx)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	raw, row, err := h.issue(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":       NewUserResource(u),
		"token":      raw,
		"expires_at": row.ExpiresAt,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	raw, row, err := h.issue(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":       NewUserResource(foundUser),
		"token":      raw,
		"expires_at": row.ExpiresAt,
	})
}

// Logout revokes exactly the token this request was authenticated with;
// other tokens for the same user stay valid.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	tokenID, ok := middlewares.TokenIDFromContext(ctx)

	if !ok || tokenID == "" {
		RespondUnAuthorized(ctx, "unauthenticated", "Unauthenticated.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.tokens.Revoke(cctx, tokenID)

	if err != nil {
		RespondInternal(ctx, "Could not log out")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// issue mints a token and persists its hashed row; the plaintext leaves the
// process exactly once, in the register/login response.
func (h *AuthHandler) issue(ctx context.Context, userID string) (string, token.Token, error) {
	raw, row, err := h.manager.Issue(userID, token.ScopeAll)

	if err != nil {
		return "", token.Token{}, err
	}

	err = h.tokens.Create(ctx, row)

	if err != nil {
		return "", token.Token{}, err
	}

	if h.metrics != nil {
		h.metrics.TokensIssued.Inc()
	}

	return raw, row, nil
}

func respondEmailTaken(ctx *gin.Context) {
	RespondUnprocessable(ctx, "Invalid request body", gin.H{
		"fields": []FieldError{
			{
				Field:   "email",
				Rule:    "unique",
				Message: "has already been taken",
			},
		},
	})
}
