package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

type DestinationStore struct {
	db *bun.DB
}

func NewDestinationStore(db *bun.DB) *DestinationStore {
	return &DestinationStore{db: db}
}

// Create inserts d. An unknown account surfaces as domain.ErrAccountNotFound
// through the foreign key.
func (s *DestinationStore) Create(ctx context.Context, d *domain.Destination) (*domain.Destination, error) {
	headers := d.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	rec := &destinationRecord{
		ID:         uuid.NewString(),
		AccountID:  d.AccountID,
		URL:        d.URL,
		HTTPMethod: string(d.HTTPMethod),
		Headers:    headers,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("insert destination: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *DestinationStore) List(ctx context.Context) ([]*domain.Destination, error) {
	return s.list(ctx, nil)
}

func (s *DestinationStore) FindByAccountID(ctx context.Context, accountID string) ([]*domain.Destination, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("account_id = ?", accountID)
	})
}

func (s *DestinationStore) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*domain.Destination, error) {
	var recs []destinationRecord
	q := s.db.NewSelect().Model(&recs).Order("created_at DESC")
	if filter != nil {
		q = filter(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}

	out := make([]*domain.Destination, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *DestinationStore) FindByID(ctx context.Context, id string) (*domain.Destination, error) {
	rec, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *DestinationStore) findByID(ctx context.Context, id string) (*destinationRecord, error) {
	rec := new(destinationRecord)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, fmt.Errorf("find destination: %w", err)
	}
	return rec, nil
}

func (s *DestinationStore) Update(ctx context.Context, id string, u domain.DestinationUpdate) (*domain.Destination, error) {
	rec, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.URL != nil {
		rec.URL = *u.URL
	}
	if u.HTTPMethod != nil {
		rec.HTTPMethod = string(*u.HTTPMethod)
	}
	if u.Headers != nil {
		rec.Headers = u.Headers
	}
	rec.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().Model(rec).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("update destination: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *DestinationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*destinationRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete destination: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrDestinationNotFound
	}
	return nil
}

func (s *DestinationStore) DeleteByAccountID(ctx context.Context, accountID string) (int64, error) {
	res, err := s.db.NewDelete().Model((*destinationRecord)(nil)).Where("account_id = ?", accountID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete destinations of account: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
