package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

type DestinationService struct {
	destinations ports.DestinationRepository
	accounts     ports.AccountRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewDestinationService(destinations ports.DestinationRepository, accounts ports.AccountRepository, logger zerolog.Logger) *DestinationService {
	return &DestinationService{
		destinations: destinations,
		accounts:     accounts,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a destination for an existing account.
func (s *DestinationService) Create(ctx context.Context, in ports.CreateDestinationInput) (*domain.Destination, error) {
	if strings.TrimSpace(in.AccountID) == "" {
		return nil, fmt.Errorf("%w: account_id is required", domain.ErrInvalidInput)
	}
	method, err := domain.ParseHTTPMethod(in.HTTPMethod)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDestinationURL(in.URL); err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindByID(ctx, in.AccountID); err != nil {
		return nil, err
	}

	headers := in.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	now := s.now()
	created, err := s.destinations.Create(ctx, &domain.Destination{
		AccountID:  in.AccountID,
		URL:        in.URL,
		HTTPMethod: method,
		Headers:    headers,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("destination_id", created.ID).
		Str("account_id", created.AccountID).
		Str("method", string(created.HTTPMethod)).
		Msg("destination created")
	return created, nil
}

func (s *DestinationService) List(ctx context.Context) ([]*domain.Destination, error) {
	return s.destinations.List(ctx)
}

func (s *DestinationService) Get(ctx context.Context, id string) (*domain.Destination, error) {
	return s.destinations.FindByID(ctx, id)
}

// ListByAccount returns the destinations of an account, failing with
// domain.ErrAccountNotFound when the account does not exist.
func (s *DestinationService) ListByAccount(ctx context.Context, accountID string) ([]*domain.Destination, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.destinations.FindByAccountID(ctx, accountID)
}

func (s *DestinationService) Update(ctx context.Context, id string, in ports.UpdateDestinationInput) (*domain.Destination, error) {
	var u domain.DestinationUpdate

	if in.URL != nil {
		if err := domain.ValidateDestinationURL(*in.URL); err != nil {
			return nil, err
		}
		u.URL = in.URL
	}
	if in.HTTPMethod != nil {
		method, err := domain.ParseHTTPMethod(*in.HTTPMethod)
		if err != nil {
			return nil, err
		}
		u.HTTPMethod = &method
	}
	u.Headers = in.Headers

	if u.URL == nil && u.HTTPMethod == nil && u.Headers == nil {
		return s.destinations.FindByID(ctx, id)
	}

	updated, err := s.destinations.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("destination_id", id).Msg("destination updated")
	return updated, nil
}

func (s *DestinationService) Delete(ctx context.Context, id string) error {
	if err := s.destinations.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("destination_id", id).Msg("destination deleted")
	return nil
}
