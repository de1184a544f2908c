package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"Email":      "email",
		"URL":        "url",
		"AccountID":  "account_id",
		"HTTPMethod": "http_method",
	}
	for in, want := range cases {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidator_HTTPMethodTag(t *testing.T) {
	v := NewValidator()

	for _, m := range []string{"GET", "post", " Put ", "delete"} {
		req := createDestinationRequest{AccountID: "a", URL: "https://x.example.com", HTTPMethod: m}
		if err := v.Validate(&req); err != nil {
			t.Errorf("method %q rejected: %v", m, err)
		}
	}

	req := createDestinationRequest{AccountID: "a", URL: "https://x.example.com", HTTPMethod: "PATCH"}
	err := v.Validate(&req)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
