// Package webhook performs the outbound HTTP calls of a dispatch.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "webhook-relay/1.0"

	maxDrainBody = 1024
	tracerName   = "github.com/datapusher/webhook-relay/webhook"
)

// Config tunes a Sender. Zero values fall back to defaults.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// Sender delivers payloads to destinations over HTTP.
type Sender struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	tracer    trace.Tracer
}

func NewSender(cfg Config) *Sender {
	s := &Sender{
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		tracer:    otel.Tracer(tracerName),
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.userAgent == "" {
		s.userAgent = DefaultUserAgent
	}
	return s
}

// Deliver sends payload to dest. GET requests carry every top-level key as a
// JSON-encoded query parameter and no body; other methods send the payload as
// a JSON body. Any non-2xx status is a failure.
func (s *Sender) Deliver(ctx context.Context, dest domain.Destination, payload domain.Payload) domain.DeliveryResult {
	res := domain.DeliveryResult{
		DestinationID: dest.ID,
		URL:           dest.URL,
		Method:        dest.HTTPMethod,
	}

	ctx, span := s.tracer.Start(ctx, "relay.delivery", trace.WithAttributes(
		attribute.String("relay.destination_id", dest.ID),
		attribute.String("http.method", string(dest.HTTPMethod)),
		attribute.String("http.url", dest.URL),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	req, err := s.newRequest(ctx, dest, payload)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		span.SetStatus(codes.Error, err.Error())
		return res
	}

	resp, err := s.client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("send request: %w", err)
		span.SetStatus(codes.Error, res.Err.Error())
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBody))

	res.StatusCode = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	return res
}

func (s *Sender) newRequest(ctx context.Context, dest domain.Destination, payload domain.Payload) (*http.Request, error) {
	if dest.HTTPMethod == domain.MethodGet {
		target, err := withQuery(dest.URL, payload)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		s.setHeaders(req, dest.Headers)
		return req, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, string(dest.HTTPMethod), dest.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req, dest.Headers)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *Sender) setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("User-Agent", s.userAgent)
	for k, v := range headers {
		// net/http ignores Host in the header map.
		if http.CanonicalHeaderKey(k) == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
}

// withQuery appends each payload key to raw as key=<json(value)>, keeping any
// query already present on raw.
func withQuery(raw string, payload domain.Payload) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	params := url.Values{}
	for k, v := range payload {
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode query param %q: %w", k, err)
		}
		params.Set(k, string(encoded))
	}

	if len(params) == 0 {
		return u.String(), nil
	}
	if u.RawQuery != "" {
		u.RawQuery += "&" + params.Encode()
	} else {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}
