package ports

import (
	"context"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
// Implementations return domain.ErrAccountNotFound for unknown ids or tokens
// and domain.ErrAccountExists when a unique field collides.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByToken(ctx context.Context, token string) (*domain.Account, error)
	Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
