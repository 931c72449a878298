package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type accountServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	listFn     func(ctx context.Context, userID string) ([]*domain.Account, error)
}

func (s *accountServiceStub) RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	return s.listFn(ctx, userID)
}

func TestAccountHandler_Register_Success(t *testing.T) {
	var captured usecase.RegisterAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: "acc-1", UserID: input.UserID, Balance: input.OpeningBalance}, nil
		},
	})

	body := `{"user_id":"u1","card_number":"6037990000000001","iban":"IR000000000000000000000001","opening_balance":"100.5"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.UserID != "u1" || captured.CardNumber != "6037990000000001" || !captured.OpeningBalance.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Balance != "100.50" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Register_InvalidPayload(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			t.Fatal("RegisterAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	for _, body := range []string{
		"{invalid json",
		`{"user_id":"u1","card_number":"1234","iban":"IR1"}`,
		`{"user_id":"u1","card_number":"6037990000000001","iban":"IR000000000000000000000001","extra":true}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestAccountHandler_Register_Duplicate(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			return nil, domain.ErrAccountExists
		},
	})

	body := `{"user_id":"u1","card_number":"6037990000000001","iban":"IR000000000000000000000001","opening_balance":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	account := &domain.Account{ID: "acc-1", UserID: "u1"}
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "acc-1" {
				t.Fatalf("expected id acc-1, got %s", id)
			}
			return account, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Another user must not see the account.
	req = httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = withIdentity(setChiURLParam(req, "id", "acc-1"), "u2")
	rec = httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign account, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_StorageErrorIsHidden(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, &domain.StorageError{Op: "get account", Err: errors.New("dial tcp 10.0.0.5:5432: refused")}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("10.0.0.5")) {
		t.Fatalf("storage detail leaked: %s", rec.Body.String())
	}
}

func TestAccountHandler_ListForUser(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, userID string) ([]*domain.Account, error) {
			if userID != "u1" {
				t.Fatalf("expected user u1, got %s", userID)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users/u1/accounts", nil)
	req = withIdentity(setChiURLParam(req, "id", "u1"), "u1")
	rec := httptest.NewRecorder()

	handler.ListForUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 || resp.Total != 2 {
		t.Fatalf("expected 2 accounts, got %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/u1/accounts", nil)
	req = withIdentity(setChiURLParam(req, "id", "u1"), "u9")
	rec = httptest.NewRecorder()

	handler.ListForUser(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withIdentity(r *http.Request, userID string) *http.Request {
	return r.WithContext(domain.ContextWithIdentity(r.Context(), &domain.Identity{UserID: userID}))
}
