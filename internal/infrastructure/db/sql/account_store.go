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

type AccountStore struct {
	db *bun.DB
}

func NewAccountStore(db *bun.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	rec := &accountRecord{
		ID:          uuid.NewString(),
		ExternalID:  a.ExternalID,
		Email:       a.Email,
		Name:        a.Name,
		SecretToken: a.SecretToken,
		Website:     a.Website,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	var recs []accountRecord
	if err := s.db.NewSelect().Model(&recs).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	rec, err := s.findOne(ctx, "id", id)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *AccountStore) FindByToken(ctx context.Context, token string) (*domain.Account, error) {
	rec, err := s.findOne(ctx, "secret_token", token)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s *AccountStore) findOne(ctx context.Context, column, value string) (*accountRecord, error) {
	rec := new(accountRecord)
	err := s.db.NewSelect().Model(rec).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return rec, nil
}

func (s *AccountStore) Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	rec, err := s.findOne(ctx, "id", id)
	if err != nil {
		return nil, err
	}

	if u.Email != nil {
		rec.Email = *u.Email
	}
	if u.Name != nil {
		rec.Name = *u.Name
	}
	if u.Website != nil {
		rec.Website = *u.Website
	}
	rec.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().Model(rec).WherePK().Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*accountRecord)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
