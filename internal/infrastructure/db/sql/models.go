package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID          string    `bun:"id,pk"`
	ExternalID  string    `bun:"external_id,notnull,unique"`
	Email       string    `bun:"email,notnull,unique"`
	Name        string    `bun:"name,notnull"`
	SecretToken string    `bun:"secret_token,notnull,unique"`
	Website     string    `bun:"website"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:          r.ID,
		ExternalID:  r.ExternalID,
		Email:       r.Email,
		Name:        r.Name,
		SecretToken: r.SecretToken,
		Website:     r.Website,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type destinationRecord struct {
	bun.BaseModel `bun:"table:destinations,alias:d"`

	ID         string            `bun:"id,pk"`
	AccountID  string            `bun:"account_id,notnull"`
	URL        string            `bun:"url,notnull"`
	HTTPMethod string            `bun:"http_method,notnull"`
	Headers    map[string]string `bun:"headers,type:jsonb,notnull"`
	CreatedAt  time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *destinationRecord) toDomain() *domain.Destination {
	headers := r.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return &domain.Destination{
		ID:         r.ID,
		AccountID:  r.AccountID,
		URL:        r.URL,
		HTTPMethod: domain.HTTPMethod(r.HTTPMethod),
		Headers:    headers,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}
