package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/davegitonga/pricehub/internal/domain/currency"
	"github.com/davegitonga/pricehub/internal/domain/price"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/http/handlers"
)

type fakeCurrenciesRepo struct {
	createFn func(ctx context.Context, ownerID string, req currency.CreateRequest) (currency.Currency, error)
	listFn   func(ctx context.Context, ownerID string) ([]currency.Currency, error)
	getFn    func(ctx context.Context, id string) (currency.Currency, error)
	updateFn func(ctx context.Context, id string, req currency.UpdateRequest) (currency.Currency, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeCurrenciesRepo) Create(ctx context.Context, ownerID string, req currency.CreateRequest) (currency.Currency, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, req)
	}

	return currency.Currency{}, nil
}

func (f *fakeCurrenciesRepo) ListByOwner(ctx context.Context, ownerID string) ([]currency.Currency, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}

	return nil, nil
}

func (f *fakeCurrenciesRepo) GetByID(ctx context.Context, id string) (currency.Currency, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return currency.Currency{}, nil
}

func (f *fakeCurrenciesRepo) Update(ctx context.Context, id string, req currency.UpdateRequest) (currency.Currency, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return currency.Currency{}, nil
}

func (f *fakeCurrenciesRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeCurrencyPriceLister struct {
	listFn func(ctx context.Context, currencyID string) ([]price.Price, error)
}

func (f *fakeCurrencyPriceLister) ListByCurrency(ctx context.Context, currencyID string) ([]price.Price, error) {
	if f.listFn != nil {
		return f.listFn(ctx, currencyID)
	}

	return nil, nil
}

type fakeUserReader struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserReader) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{}, nil
}

func TestCreateCurrencyHandler(t *testing.T) {
	ownerID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeCurrenciesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"code": "USD", "name": "US Dollar"}`,
			repoSetUp: func(f *fakeCurrenciesRepo) {
				f.createFn = func(ctx context.Context, gotOwner string, req currency.CreateRequest) (currency.Currency, error) {
					return currency.Currency{
						ID:     newUUID(),
						UserID: gotOwner,
						Code:   req.Code,
						Name:   req.Name,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "code_too_long",
			body:           `{"code": "DOLLARS", "name": "US Dollar"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "missing_name",
			body:           `{"code": "USD"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "repo_error",
			body: `{"code": "USD", "name": "US Dollar"}`,
			repoSetUp: func(f *fakeCurrenciesRepo) {
				f.createFn = func(ctx context.Context, ownerID string, req currency.CreateRequest) (currency.Currency, error) {
					return currency.Currency{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCurrenciesRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewCurrenciesHandler(repo, &fakeCurrencyPriceLister{}, &fakeUserReader{})
			r := setupRouter(http.MethodPost, "/currencies", ownerID, h.Store)

			w := doJSON(t, r, http.MethodPost, "/currencies", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestShowCurrencyForbiddenMessage(t *testing.T) {
	ownerID := newUUID()
	otherID := newUUID()

	repo := &fakeCurrenciesRepo{
		getFn: func(ctx context.Context, id string) (currency.Currency, error) {
			return currency.Currency{ID: id, UserID: ownerID, Code: "EUR", Name: "Euro"}, nil
		},
	}

	h := handlers.NewCurrenciesHandler(repo, &fakeCurrencyPriceLister{}, &fakeUserReader{})
	r := setupRouter(http.MethodGet, "/currencies/:id", otherID, h.Show)

	w := doJSON(t, r, http.MethodGet, "/currencies/"+newUUID(), "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	want := "You are not authorized to view this currency."

	if resp.Error.Message != want {
		t.Fatalf("got message %q, want %q", resp.Error.Message, want)
	}
}

func TestShowCurrencyIncludes(t *testing.T) {
	ownerID := newUUID()
	currencyID := newUUID()

	repo := &fakeCurrenciesRepo{
		getFn: func(ctx context.Context, id string) (currency.Currency, error) {
			return currency.Currency{ID: id, UserID: ownerID, Code: "KES", Name: "Kenyan Shilling"}, nil
		},
	}

	prices := &fakeCurrencyPriceLister{
		listFn: func(ctx context.Context, gotCurrency string) ([]price.Price, error) {
			return []price.Price{
				{ID: newUUID(), ProductID: newUUID(), CurrencyID: gotCurrency, Amount: 19.99, OwnerUserID: ownerID},
			}, nil
		},
	}

	users := &fakeUserReader{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Name: "Dave", Email: "dave@example.com"}, nil
		},
	}

	h := handlers.NewCurrenciesHandler(repo, prices, users)

	tests := []struct {
		name       string
		url        string
		wantUser   bool
		wantPrices bool
	}{
		{name: "no_includes", url: "/currencies/" + currencyID},
		{name: "include_user", url: "/currencies/" + currencyID + "?include=user", wantUser: true},
		{name: "include_both", url: "/currencies/" + currencyID + "?include=user,prices", wantUser: true, wantPrices: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(http.MethodGet, "/currencies/:id", ownerID, h.Show)

			w := doJSON(t, r, http.MethodGet, tt.url, "")

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}

			var resp map[string]json.RawMessage

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response: %v", err)
			}

			_, hasUser := resp["user"]
			_, hasPrices := resp["prices"]

			if hasUser != tt.wantUser {
				t.Fatalf("user present=%v, want %v, body=%s", hasUser, tt.wantUser, w.Body.String())
			}

			if hasPrices != tt.wantPrices {
				t.Fatalf("prices present=%v, want %v, body=%s", hasPrices, tt.wantPrices, w.Body.String())
			}
		})
	}
}

func TestDeleteCurrencyHandler(t *testing.T) {
	ownerID := newUUID()

	repo := &fakeCurrenciesRepo{
		getFn: func(ctx context.Context, id string) (currency.Currency, error) {
			return currency.Currency{ID: id, UserID: ownerID}, nil
		},
	}

	h := handlers.NewCurrenciesHandler(repo, &fakeCurrencyPriceLister{}, &fakeUserReader{})
	r := setupRouter(http.MethodDelete, "/currencies/:id", ownerID, h.Destroy)

	w := doJSON(t, r, http.MethodDelete, "/currencies/"+newUUID(), "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204, body=%s", w.Code, w.Body.String())
	}
}
