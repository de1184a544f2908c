package ports

import (
	"context"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// CreateAccountInput is the DTO passed from the transport layer to AccountService.
type CreateAccountInput struct {
	Email   string
	Name    string
	Website string
}

type AccountService interface {
	Create(ctx context.Context, in CreateAccountInput) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error)
	// Delete removes the account and every destination it owns.
	Delete(ctx context.Context, id string) error
}
