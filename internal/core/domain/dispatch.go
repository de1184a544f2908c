package domain

import "time"

// Payload is the decoded JSON object received on the ingress endpoint.
type Payload map[string]any

// DeliveryResult is the outcome of one outbound call.
type DeliveryResult struct {
	DestinationID string
	URL           string
	Method        HTTPMethod
	StatusCode    int
	Duration      time.Duration
	Err           error
}

func (r DeliveryResult) OK() bool { return r.Err == nil }

// OutcomeStatus summarises a dispatch.
type OutcomeStatus string

const (
	OutcomeAccepted       OutcomeStatus = "accepted"
	OutcomePartialFailure OutcomeStatus = "partial_failure"
)

// DispatchOutcome aggregates the delivery results of one ingress request.
// Results follow the order of the account's destinations.
type DispatchOutcome struct {
	Status    OutcomeStatus
	Message   string
	AccountID string
	Delivered int
	Failed    int
	Results   []DeliveryResult
}

func (o *DispatchOutcome) Total() int { return len(o.Results) }
