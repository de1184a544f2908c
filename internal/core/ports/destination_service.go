package ports

import (
	"context"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// CreateDestinationInput is the DTO passed from the transport layer to DestinationService.
// HTTPMethod is accepted in any case and normalised by the service.
type CreateDestinationInput struct {
	AccountID  string
	URL        string
	HTTPMethod string
	Headers    map[string]string
}

// UpdateDestinationInput carries optional fields; nil means unchanged.
type UpdateDestinationInput struct {
	URL        *string
	HTTPMethod *string
	Headers    map[string]string
}

type DestinationService interface {
	Create(ctx context.Context, in CreateDestinationInput) (*domain.Destination, error)
	List(ctx context.Context) ([]*domain.Destination, error)
	Get(ctx context.Context, id string) (*domain.Destination, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Destination, error)
	Update(ctx context.Context, id string, in UpdateDestinationInput) (*domain.Destination, error)
	Delete(ctx context.Context, id string) error
}
