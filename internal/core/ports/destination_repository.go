package ports

import (
	"context"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// DestinationRepository defines persistence operations for destinations.
type DestinationRepository interface {
	Create(ctx context.Context, d *domain.Destination) (*domain.Destination, error)
	// List returns all destinations, newest first.
	List(ctx context.Context) ([]*domain.Destination, error)
	FindByID(ctx context.Context, id string) (*domain.Destination, error)
	// FindByAccountID returns the destinations owned by accountID, newest first.
	// An account without destinations yields an empty slice, not an error.
	FindByAccountID(ctx context.Context, accountID string) ([]*domain.Destination, error)
	Update(ctx context.Context, id string, u domain.DestinationUpdate) (*domain.Destination, error)
	Delete(ctx context.Context, id string) error
	// DeleteByAccountID removes every destination of accountID and reports how many were removed.
	DeleteByAccountID(ctx context.Context, accountID string) (int64, error)
}
