package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

const tokenBytes = 32

type AccountService struct {
	accounts     ports.AccountRepository
	destinations ports.DestinationRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewAccountService(accounts ports.AccountRepository, destinations ports.DestinationRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{
		accounts:     accounts,
		destinations: destinations,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new account and assigns its external id and secret token.
func (s *AccountService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", domain.ErrInvalidInput)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	created, err := s.accounts.Create(ctx, &domain.Account{
		ExternalID:  uuid.NewString(),
		Email:       email,
		Name:        name,
		SecretToken: token,
		Website:     strings.TrimSpace(in.Website),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", created.ID).Str("external_id", created.ExternalID).Msg("account created")
	return created, nil
}

func (s *AccountService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx)
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// Update changes email, name and website. Values are trimmed; blank email or name
// values are ignored and an empty website clears it. The token is never touched.
func (s *AccountService) Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	u.Email = trimmedOrNil(u.Email)
	u.Name = trimmedOrNil(u.Name)
	if u.Website != nil {
		website := strings.TrimSpace(*u.Website)
		u.Website = &website
	}
	if u.Empty() {
		return s.accounts.FindByID(ctx, id)
	}

	updated, err := s.accounts.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", id).Msg("account updated")
	return updated, nil
}

// Delete removes the account after its destinations, so no destination can
// outlive its owner even on stores without foreign keys.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.destinations.DeleteByAccountID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete destinations of account %s: %w", id, err)
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", id).Int64("destinations_removed", removed).Msg("account deleted")
	return nil
}

// generateToken returns 32 random bytes, hex encoded.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// trimmedOrNil returns a pointer to the trimmed value, or nil when it is blank.
func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
