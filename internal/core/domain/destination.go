package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// HTTPMethod is the verb used when delivering to a destination.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

// ParseHTTPMethod normalises s to upper case and checks it is supported.
func ParseHTTPMethod(s string) (HTTPMethod, error) {
	m := HTTPMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, nil
	}
	return "", fmt.Errorf("%w: unsupported http method %q", ErrInvalidInput, s)
}

// ValidateDestinationURL accepts absolute http and https URLs only.
func ValidateDestinationURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: url must be an absolute http(s) url", ErrInvalidInput)
	}
	return nil
}

// Destination is an outbound HTTP target owned by an account.
type Destination struct {
	ID         string            `json:"id"`
	AccountID  string            `json:"account_id"`
	URL        string            `json:"url"`
	HTTPMethod HTTPMethod        `json:"http_method"`
	Headers    map[string]string `json:"headers"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// DestinationUpdate carries the mutable destination fields. Nil means unchanged.
type DestinationUpdate struct {
	URL        *string
	HTTPMethod *HTTPMethod
	Headers    map[string]string
}

func (u DestinationUpdate) Apply(d *Destination) {
	if u.URL != nil {
		d.URL = *u.URL
	}
	if u.HTTPMethod != nil {
		d.HTTPMethod = *u.HTTPMethod
	}
	if u.Headers != nil {
		d.Headers = u.Headers
	}
}
