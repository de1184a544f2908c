package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

func TestDestinationHandler_Create_Success(t *testing.T) {
	stub := &stubDestinationService{
		createFn: func(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error) {
			if in.AccountID != "acc-1" || in.URL != "https://hooks.example.com/in" || in.HTTPMethod != "post" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Headers["X-Key"] != "v" {
				t.Fatalf("headers not forwarded: %+v", in.Headers)
			}
			return &domain.Destination{ID: "dst-1", AccountID: in.AccountID, URL: in.URL, HTTPMethod: domain.MethodPost}, nil
		},
	}
	h := NewDestinationHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/destinations", strings.NewReader(
		`{"account_id":"acc-1","url":"https://hooks.example.com/in","http_method":"post","headers":{"X-Key":"v"}}`))
	c, rec := newContext(req)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data, _ := decodeResponse(t, rec)["data"].(map[string]any)
	if data["http_method"] != "POST" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestDestinationHandler_Create_UnsupportedMethod(t *testing.T) {
	stub := &stubDestinationService{
		createFn: func(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewDestinationHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/destinations", strings.NewReader(
		`{"account_id":"acc-1","url":"https://hooks.example.com","http_method":"PATCH"}`))
	c, _ := newContext(req)

	err := h.Create(c)
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(err.Error(), "http_method must be one of") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestDestinationHandler_Create_InvalidURL(t *testing.T) {
	h := NewDestinationHandler(&stubDestinationService{})

	req := jsonRequest(http.MethodPost, "/api/destinations", strings.NewReader(
		`{"account_id":"acc-1","url":"not a url","http_method":"GET"}`))
	c, _ := newContext(req)

	err := h.Create(c)
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(err.Error(), "url must be a valid url") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestDestinationHandler_Create_UnknownAccount(t *testing.T) {
	stub := &stubDestinationService{
		createFn: func(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	h := NewDestinationHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/destinations", strings.NewReader(
		`{"account_id":"ghost","url":"https://hooks.example.com","http_method":"GET"}`))
	c, _ := newContext(req)

	if err := h.Create(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDestinationHandler_ListByAccount(t *testing.T) {
	stub := &stubDestinationService{
		listByAccountFn: func(ctx context.Context, accountID string) ([]*domain.Destination, error) {
			if accountID != "acc-1" {
				t.Fatalf("unexpected account %q", accountID)
			}
			return []*domain.Destination{{ID: "d1"}, {ID: "d2"}}, nil
		},
	}
	h := NewDestinationHandler(stub)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/api/destinations/account/acc-1", nil))
	withParam(c, "accountId", "acc-1")

	if err := h.ListByAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data, _ := decodeResponse(t, rec)["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(data))
	}
}

func TestDestinationHandler_List_EmptyIsArray(t *testing.T) {
	stub := &stubDestinationService{
		listFn: func(ctx context.Context) ([]*domain.Destination, error) { return nil, nil },
	}
	h := NewDestinationHandler(stub)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/api/destinations", nil))
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestDestinationHandler_Update_HeadersOnly(t *testing.T) {
	stub := &stubDestinationService{
		updateFn: func(ctx context.Context, id string, in ports.UpdateDestinationInput) (*domain.Destination, error) {
			if id != "dst-1" {
				t.Fatalf("unexpected id %q", id)
			}
			if in.URL != nil || in.HTTPMethod != nil {
				t.Fatalf("expected url and method untouched, got %+v", in)
			}
			if in.Headers["Authorization"] != "Bearer x" {
				t.Fatalf("unexpected headers: %+v", in.Headers)
			}
			return &domain.Destination{ID: id, Headers: in.Headers}, nil
		},
	}
	h := NewDestinationHandler(stub)

	req := jsonRequest(http.MethodPut, "/api/destinations/dst-1", strings.NewReader(`{"headers":{"Authorization":"Bearer x"}}`))
	c, rec := newContext(req)
	withParam(c, "id", "dst-1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDestinationHandler_Delete_NotFound(t *testing.T) {
	stub := &stubDestinationService{
		deleteFn: func(ctx context.Context, id string) error { return domain.ErrDestinationNotFound },
	}
	h := NewDestinationHandler(stub)

	c, _ := newContext(httptest.NewRequest(http.MethodDelete, "/api/destinations/nope", nil))
	withParam(c, "id", "nope")

	if err := h.Delete(c); !errors.Is(err, domain.ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
}
