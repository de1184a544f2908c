package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

type stubAccountService struct {
	createFn func(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error)
	listFn   func(ctx context.Context) ([]*domain.Account, error)
	getFn    func(ctx context.Context, id string) (*domain.Account, error)
	updateFn func(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubAccountService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, in)
}

func (s *stubAccountService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *stubAccountService) Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	return s.updateFn(ctx, id, u)
}

func (s *stubAccountService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubDestinationService struct {
	createFn        func(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error)
	listFn          func(ctx context.Context) ([]*domain.Destination, error)
	getFn           func(ctx context.Context, id string) (*domain.Destination, error)
	listByAccountFn func(ctx context.Context, accountID string) ([]*domain.Destination, error)
	updateFn        func(ctx context.Context, id string, in ports.UpdateDestinationInput) (*domain.Destination, error)
	deleteFn        func(ctx context.Context, id string) error
}

func (s *stubDestinationService) Create(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error) {
	return s.createFn(ctx, in)
}

func (s *stubDestinationService) List(ctx context.Context) ([]*domain.Destination, error) {
	return s.listFn(ctx)
}

func (s *stubDestinationService) Get(ctx context.Context, id string) (*domain.Destination, error) {
	return s.getFn(ctx, id)
}

func (s *stubDestinationService) ListByAccount(ctx context.Context, accountID string) ([]*domain.Destination, error) {
	return s.listByAccountFn(ctx, accountID)
}

func (s *stubDestinationService) Update(ctx context.Context, id string, in ports.UpdateDestinationInput) (*domain.Destination, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubDestinationService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubDispatchService struct {
	dispatchFn func(ctx context.Context, in ports.DispatchInput) (*domain.DispatchOutcome, error)
}

func (s *stubDispatchService) Dispatch(ctx context.Context, in ports.DispatchInput) (*domain.DispatchOutcome, error) {
	return s.dispatchFn(ctx, in)
}

// newContext builds an echo context with the request validator installed.
func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func jsonRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}
