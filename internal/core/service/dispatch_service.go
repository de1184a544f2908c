package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

const (
	jsonContentType = "application/json"
	tracerName      = "github.com/datapusher/webhook-relay/dispatch"
)

// TokenResolver is the subset of the account directory the dispatcher needs.
type TokenResolver interface {
	FindByToken(ctx context.Context, token string) (*domain.Account, error)
}

// DestinationResolver is the subset of the destination directory the dispatcher needs.
type DestinationResolver interface {
	FindByAccountID(ctx context.Context, accountID string) ([]*domain.Destination, error)
}

type DispatchOption func(*DispatchService)

// WithTaskRunner routes deliveries through r instead of one goroutine per destination.
func WithTaskRunner(r ports.TaskRunner) DispatchOption {
	return func(s *DispatchService) { s.runner = r }
}

func WithRecorder(r ports.DispatchRecorder) DispatchOption {
	return func(s *DispatchService) { s.recorder = r }
}

// DispatchService fans an authenticated payload out to every destination of
// the owning account and joins the results.
type DispatchService struct {
	accounts     TokenResolver
	destinations DestinationResolver
	deliverer    ports.Deliverer
	runner       ports.TaskRunner
	recorder     ports.DispatchRecorder
	tracer       trace.Tracer
	logger       zerolog.Logger
}

func NewDispatchService(accounts TokenResolver, destinations DestinationResolver, deliverer ports.Deliverer, logger zerolog.Logger, opts ...DispatchOption) *DispatchService {
	s := &DispatchService{
		accounts:     accounts,
		destinations: destinations,
		deliverer:    deliverer,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch validates the request in a fixed order (token present, content
// type, token known, body decodes to an object) and then delivers to all
// destinations concurrently. Deliveries are detached from ctx cancellation:
// a client hanging up does not abort calls already under way.
func (s *DispatchService) Dispatch(ctx context.Context, in ports.DispatchInput) (*domain.DispatchOutcome, error) {
	if in.Token == "" {
		return nil, domain.ErrUnauthenticated
	}
	if in.ContentType != jsonContentType {
		return nil, fmt.Errorf("%w: content type must be %s", domain.ErrInvalidPayload, jsonContentType)
	}

	account, err := s.accounts.FindByToken(ctx, in.Token)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	payload, err := decodePayload(in.Body)
	if err != nil {
		return nil, err
	}

	dests, err := s.destinations.FindByAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load destinations: %w", err)
	}

	if len(dests) == 0 {
		s.logger.Info().Str("account_id", account.ID).Msg("no destinations configured")
		s.record(domain.OutcomeAccepted)
		return &domain.DispatchOutcome{
			Status:    domain.OutcomeAccepted,
			Message:   "Data received but no destinations configured",
			AccountID: account.ID,
			Results:   []domain.DeliveryResult{},
		}, nil
	}

	ctx, span := s.tracer.Start(ctx, "relay.dispatch", trace.WithAttributes(
		attribute.String("relay.account_id", account.ID),
		attribute.Int("relay.destinations", len(dests)),
	))
	defer span.End()

	results := s.fanOut(context.WithoutCancel(ctx), dests, payload)

	outcome := &domain.DispatchOutcome{AccountID: account.ID, Results: results}
	var firstFailure *domain.DeliveryResult
	for i := range results {
		if results[i].OK() {
			outcome.Delivered++
			continue
		}
		outcome.Failed++
		if firstFailure == nil {
			firstFailure = &results[i]
		}
	}

	span.SetAttributes(
		attribute.Int("relay.delivered", outcome.Delivered),
		attribute.Int("relay.failed", outcome.Failed),
	)

	if firstFailure != nil {
		outcome.Status = domain.OutcomePartialFailure
		outcome.Message = "Failed to send data to some destinations"
		span.SetStatus(codes.Error, outcome.Message)
		s.record(outcome.Status)
		return outcome, fmt.Errorf("%w: %s: %v", domain.ErrPartialFailure, firstFailure.URL, firstFailure.Err)
	}

	outcome.Status = domain.OutcomeAccepted
	outcome.Message = fmt.Sprintf("Data sent to %d destination(s) successfully", outcome.Delivered)
	s.record(outcome.Status)
	return outcome, nil
}

// fanOut runs one delivery per destination and waits for all of them.
// results[i] always belongs to dests[i].
func (s *DispatchService) fanOut(ctx context.Context, dests []*domain.Destination, payload domain.Payload) []domain.DeliveryResult {
	results := make([]domain.DeliveryResult, len(dests))
	var wg sync.WaitGroup

	for i, d := range dests {
		i := i
		dest := *d
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = s.deliver(ctx, dest, payload)
		}

		if err := s.submit(ctx, task); err != nil {
			results[i] = domain.DeliveryResult{
				DestinationID: dest.ID,
				URL:           dest.URL,
				Method:        dest.HTTPMethod,
				Err:           fmt.Errorf("schedule delivery: %w", err),
			}
			s.logResult(results[i])
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

func (s *DispatchService) submit(ctx context.Context, task func()) error {
	if s.runner == nil {
		go task()
		return nil
	}
	return s.runner.Submit(ctx, task)
}

func (s *DispatchService) deliver(ctx context.Context, dest domain.Destination, payload domain.Payload) domain.DeliveryResult {
	start := time.Now()
	res := s.deliverer.Deliver(ctx, dest, payload)
	res.DestinationID = dest.ID
	res.URL = dest.URL
	res.Method = dest.HTTPMethod
	if res.Duration == 0 {
		res.Duration = time.Since(start)
	}

	if s.recorder != nil {
		s.recorder.RecordDelivery(string(dest.HTTPMethod), res.OK(), res.Duration)
	}
	s.logResult(res)
	return res
}

func (s *DispatchService) logResult(res domain.DeliveryResult) {
	if res.OK() {
		s.logger.Info().
			Str("destination_id", res.DestinationID).
			Str("url", res.URL).
			Str("method", string(res.Method)).
			Int("status_code", res.StatusCode).
			Dur("duration", res.Duration).
			Msg("data sent to destination")
		return
	}
	s.logger.Error().
		Err(res.Err).
		Str("destination_id", res.DestinationID).
		Str("url", res.URL).
		Str("method", string(res.Method)).
		Int("status_code", res.StatusCode).
		Dur("duration", res.Duration).
		Msg("failed to send data to destination")
}

func (s *DispatchService) record(status domain.OutcomeStatus) {
	if s.recorder != nil {
		s.recorder.RecordDispatch(status)
	}
}

// decodePayload parses body as a single JSON object. An empty body is an
// empty object. Numbers keep their textual form.
func decodePayload(body []byte) (domain.Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: malformed json: %v", domain.ErrInvalidPayload, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after json object", domain.ErrInvalidPayload)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload must be a json object", domain.ErrInvalidPayload)
	}
	return domain.Payload(obj), nil
}
