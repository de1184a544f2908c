package handler

import (
	"github.com/datapusher/webhook-relay/internal/core/domain"
)

// --- Accounts ---

type createAccountRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Website string `json:"website" validate:"omitempty,url"`
}

type updateAccountRequest struct {
	Email   *string `json:"email" validate:"omitempty,email"`
	Name    *string `json:"name"`
	Website *string `json:"website"`
}

// --- Destinations ---

type createDestinationRequest struct {
	AccountID  string            `json:"account_id" validate:"required"`
	URL        string            `json:"url" validate:"required,http_url"`
	HTTPMethod string            `json:"http_method" validate:"required,http_method"`
	Headers    map[string]string `json:"headers"`
}

type updateDestinationRequest struct {
	URL        *string           `json:"url" validate:"omitempty,http_url"`
	HTTPMethod *string           `json:"http_method" validate:"omitempty,http_method"`
	Headers    map[string]string `json:"headers"`
}

// --- Ingress ---

type deliveryResponse struct {
	DestinationID string            `json:"destination_id"`
	URL           string            `json:"url"`
	Method        domain.HTTPMethod `json:"method"`
	Success       bool              `json:"success"`
	StatusCode    int               `json:"status_code,omitempty"`
	DurationMs    int64             `json:"duration_ms"`
	Error         string            `json:"error,omitempty"`
}

type dispatchResponse struct {
	Status    domain.OutcomeStatus `json:"status"`
	Total     int                  `json:"total"`
	Delivered int                  `json:"delivered"`
	Failed    int                  `json:"failed"`
	Results   []deliveryResponse   `json:"results"`
}

func newDispatchResponse(o *domain.DispatchOutcome, exposeErrors bool) dispatchResponse {
	resp := dispatchResponse{
		Status:    o.Status,
		Total:     o.Total(),
		Delivered: o.Delivered,
		Failed:    o.Failed,
		Results:   make([]deliveryResponse, 0, len(o.Results)),
	}
	for _, r := range o.Results {
		item := deliveryResponse{
			DestinationID: r.DestinationID,
			URL:           r.URL,
			Method:        r.Method,
			Success:       r.OK(),
			StatusCode:    r.StatusCode,
			DurationMs:    r.Duration.Milliseconds(),
		}
		if r.Err != nil && exposeErrors {
			item.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
