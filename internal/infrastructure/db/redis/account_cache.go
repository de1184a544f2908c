package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/datapusher/webhook-relay/internal/core/domain"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

const (
	defaultCacheTTL = 5 * time.Minute
	tokenKeyPrefix  = "relay:account:token:"
)

// CachedAccountRepository wraps an AccountRepository with a read-through
// Redis cache for token lookups, the hot path of every ingress request.
// Cache failures are logged and fall through to the wrapped repository.
type CachedAccountRepository struct {
	ports.AccountRepository

	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedAccountRepository(inner ports.AccountRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedAccountRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedAccountRepository{AccountRepository: inner, client: client, ttl: ttl, log: log}
}

func (r *CachedAccountRepository) FindByToken(ctx context.Context, token string) (*domain.Account, error) {
	key := tokenKey(token)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var a domain.Account
		if jsonErr := json.Unmarshal(raw, &a); jsonErr == nil {
			return &a, nil
		}
		r.log.Warn().Str("key", key).Msg("discarding undecodable cached account")
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Msg("account cache read failed")
	}

	a, err := r.AccountRepository.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if buf, err := json.Marshal(a); err == nil {
		if err := r.client.Set(ctx, key, buf, r.ttl).Err(); err != nil {
			r.log.Warn().Err(err).Msg("account cache write failed")
		}
	}
	return a, nil
}

func (r *CachedAccountRepository) Update(ctx context.Context, id string, u domain.AccountUpdate) (*domain.Account, error) {
	a, err := r.AccountRepository.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, a.SecretToken)
	return a, nil
}

func (r *CachedAccountRepository) Delete(ctx context.Context, id string) error {
	a, err := r.AccountRepository.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.AccountRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, a.SecretToken)
	return nil
}

func (r *CachedAccountRepository) evict(ctx context.Context, token string) {
	if err := r.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		r.log.Warn().Err(err).Msg("account cache eviction failed")
	}
}

func tokenKey(token string) string {
	return tokenKeyPrefix + token
}
