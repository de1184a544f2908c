package ports

import (
	"context"
	"time"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// DispatchInput is what the ingress endpoint extracts from a request,
// forwarded verbatim.
type DispatchInput struct {
	Token       string
	ContentType string
	Body        []byte
}

// DispatchService authenticates an inbound payload and fans it out to the
// account's destinations. A non-nil outcome is returned together with
// domain.ErrPartialFailure when some deliveries failed.
type DispatchService interface {
	Dispatch(ctx context.Context, in DispatchInput) (*domain.DispatchOutcome, error)
}

// Deliverer performs one outbound call. It never panics; failures are
// reported through DeliveryResult.Err.
type Deliverer interface {
	Deliver(ctx context.Context, dest domain.Destination, payload domain.Payload) domain.DeliveryResult
}

// TaskRunner executes fn asynchronously, blocking until it is accepted
// or ctx is done.
type TaskRunner interface {
	Submit(ctx context.Context, fn func()) error
}

// DispatchRecorder receives dispatch metrics.
type DispatchRecorder interface {
	RecordDelivery(method string, ok bool, d time.Duration)
	RecordDispatch(status domain.OutcomeStatus)
}
