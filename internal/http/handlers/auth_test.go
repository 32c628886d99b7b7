package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/davegitonga/pricehub/internal/auth"
	"github.com/davegitonga/pricehub/internal/domain/token"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/http/handlers"
	"github.com/davegitonga/pricehub/internal/http/middlewares"
	"github.com/davegitonga/pricehub/internal/security"
	"github.com/gin-gonic/gin"
)

type fakeAuthUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, name, email, passwordHash string) (user.User, error)
}

func (f *fakeAuthUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeAuthUsersRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, email, passwordHash)
	}

	return user.User{}, nil
}

type fakeTokensRepo struct {
	created []token.Token
	revoked []string
}

func (f *fakeTokensRepo) Create(ctx context.Context, t token.Token) error {
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTokensRepo) Revoke(ctx context.Context, id string) error {
	f.revoked = append(f.revoked, id)
	return nil
}

func newAuthHandler(users *fakeAuthUsersRepo, tokens *fakeTokensRepo) *handlers.AuthHandler {
	manager := auth.NewManager("test-secret", time.Hour)

	return handlers.NewAuthHandler(users, users, tokens, manager, nil)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeAuthUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"name": "Dave",
				"email": "dave@example.com",
				"password": "secret-password",
				"password_confirmation": "secret-password"
			}`,
			repoSetUp: func(f *fakeAuthUsersRepo) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					if passwordHash == "secret-password" {
						return user.User{}, errors.New("plaintext password reached the repo")
					}

					return user.User{ID: newUUID(), Name: name, Email: email, PasswordHash: passwordHash}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "password_confirmation_mismatch",
			body: `{
				"name": "Dave",
				"email": "dave@example.com",
				"password": "secret-password",
				"password_confirmation": "different"
			}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "short_password",
			body: `{
				"name": "Dave",
				"email": "dave@example.com",
				"password": "short",
				"password_confirmation": "short"
			}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "bad_email",
			body: `{
				"name": "Dave",
				"email": "not-an-email",
				"password": "secret-password",
				"password_confirmation": "secret-password"
			}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "email_taken",
			body: `{
				"name": "Dave",
				"email": "dave@example.com",
				"password": "secret-password",
				"password_confirmation": "secret-password"
			}`,
			repoSetUp: func(f *fakeAuthUsersRepo) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeAuthUsersRepo{}
			tokens := &fakeTokensRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(users)
			}

			h := newAuthHandler(users, tokens)
			r := setupRouter(http.MethodPost, "/register", "", h.Register)

			w := doJSON(t, r, http.MethodPost, "/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusCreated {
				return
			}

			var resp struct {
				User      map[string]json.RawMessage `json:"user"`
				Token     string                     `json:"token"`
				ExpiresAt *time.Time                 `json:"expires_at"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response: %v", err)
			}

			if resp.Token == "" {
				t.Fatal("no token in response")
			}

			if resp.ExpiresAt == nil {
				t.Fatal("no expires_at in response")
			}

			if _, leaked := resp.User["password"]; leaked {
				t.Fatal("password leaked in user resource")
			}

			if len(tokens.created) != 1 {
				t.Fatalf("got %d token rows, want 1", len(tokens.created))
			}

			if tokens.created[0].TokenHash == resp.Token {
				t.Fatal("plaintext token stored instead of its hash")
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("secret-password")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	stored := user.User{ID: newUUID(), Name: "Dave", Email: "dave@example.com", PasswordHash: hash}

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeAuthUsersRepo)
		wantStatusCode int
		wantErrCode    string
	}{
		{
			name: "success",
			body: `{"email": "dave@example.com", "password": "secret-password"}`,
			repoSetUp: func(f *fakeAuthUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong_password",
			body: `{"email": "dave@example.com", "password": "wrong-password"}`,
			repoSetUp: func(f *fakeAuthUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return stored, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "invalid_credentials",
		},
		{
			name:           "unknown_email",
			body:           `{"email": "nobody@example.com", "password": "secret-password"}`,
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "invalid_credentials",
		},
		{
			name:           "missing_password",
			body:           `{"email": "dave@example.com"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := &fakeAuthUsersRepo{}
			tokens := &fakeTokensRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(users)
			}

			h := newAuthHandler(users, tokens)
			r := setupRouter(http.MethodPost, "/login", "", h.Login)

			w := doJSON(t, r, http.MethodPost, "/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrCode == "" {
				return
			}

			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response: %v", err)
			}

			if resp.Error.Code != tt.wantErrCode {
				t.Fatalf("got error code %q, want %q", resp.Error.Code, tt.wantErrCode)
			}
		})
	}
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	users := &fakeAuthUsersRepo{}
	tokens := &fakeTokensRepo{}

	h := newAuthHandler(users, tokens)

	tokenID := newUUID()

	r := gin.New()
	r.POST("/logout", func(c *gin.Context) {
		// identity as the auth middleware would have left it
		middlewares.SetIdentity(c, newUUID(), tokenID, "all")
		c.Next()
	}, h.Logout)

	w := doJSON(t, r, http.MethodPost, "/logout", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if len(tokens.revoked) != 1 || tokens.revoked[0] != tokenID {
		t.Fatalf("revoked=%v, want exactly [%s]", tokens.revoked, tokenID)
	}
}
