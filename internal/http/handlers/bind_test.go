package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/davegitonga/pricehub/internal/domain/price"
	"github.com/davegitonga/pricehub/internal/domain/user"
	"github.com/davegitonga/pricehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fieldErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			Fields []struct {
				Field   string `json:"field"`
				Rule    string `json:"rule"`
				Param   string `json:"param"`
				Message string `json:"message"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRoute[T any](t *testing.T, body string) (*fieldErrorResponse, int) {
	t.Helper()

	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var req T

		if !handlers.BindJSON(c, &req) {
			return
		}

		c.Status(http.StatusOK)
	})

	w := doJSON(t, r, http.MethodPost, "/bind", body)

	if w.Code == http.StatusOK {
		return nil, w.Code
	}

	var resp fieldErrorResponse

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v, body=%s", err, w.Body.String())
	}

	return &resp, w.Code
}

func TestBindJSONFieldNamesAreJSONTags(t *testing.T) {
	resp, code := bindRoute[user.RegisterRequest](t, `{
		"name": "Dave",
		"email": "dave@example.com",
		"password": "secret-password",
		"password_confirmation": "different"
	}`)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", code)
	}

	if resp.Error.Code != "validation_failed" {
		t.Fatalf("got code %q, want validation_failed", resp.Error.Code)
	}

	fields := resp.Error.Details.Fields

	if len(fields) != 1 {
		t.Fatalf("got %d field errors, want 1", len(fields))
	}

	// snake_case json name, not the Go struct field
	if fields[0].Field != "password_confirmation" {
		t.Fatalf("got field %q, want password_confirmation", fields[0].Field)
	}

	if fields[0].Rule != "eqfield" {
		t.Fatalf("got rule %q, want eqfield", fields[0].Rule)
	}
}

func TestBindJSONRangeRule(t *testing.T) {
	resp, code := bindRoute[price.CreateRequest](t, `{
		"product_id": "5e57f3bb-0b5b-4a7b-bb3e-5d0a0f9c7a3e",
		"currency_id": "b2f3e0a1-9c4d-4e5f-8a6b-7c8d9e0f1a2b",
		"amount": 100000000.00
	}`)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", code)
	}

	fields := resp.Error.Details.Fields

	if len(fields) != 1 || fields[0].Field != "amount" || fields[0].Rule != "lte" {
		t.Fatalf("unexpected field errors: %+v", fields)
	}
}

func TestBindJSONTypeMismatch(t *testing.T) {
	resp, code := bindRoute[user.LoginRequest](t, `{"email": "dave@example.com", "password": 12345}`)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", code)
	}

	if resp.Error.Code != "validation_failed" {
		t.Fatalf("got code %q, want validation_failed", resp.Error.Code)
	}
}

func TestBindJSONSyntaxError(t *testing.T) {
	_, code := bindRoute[user.LoginRequest](t, `{"email": `)

	if code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", code)
	}
}
