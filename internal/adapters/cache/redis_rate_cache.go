package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRateCache caches latest rate matrices in Redis across batches.
// Rate matrices change at most a few times a day, so a short TTL keeps the
// cache fresh enough. Redis failures degrade to the backing repository.
type RedisRateCache struct {
	client *redis.Client
	next   ports.RateRepository
	ttl    time.Duration
	prefix string
}

var _ ports.RateRepository = (*RedisRateCache)(nil)

type cachedMatrix struct {
	Equipment   string             `json:"equipment"`
	Level       string             `json:"level"`
	EffectiveAt time.Time          `json:"effective_at"`
	Rates       map[string]float64 `json:"rates"`
}

func NewRedisRateCache(client *redis.Client, next ports.RateRepository, ttl time.Duration) (*RedisRateCache, error) {
	if client == nil {
		return nil, errors.New("redis rate cache: client is nil")
	}
	if next == nil {
		return nil, errors.New("redis rate cache: backing repository is nil")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisRateCache{client: client, next: next, ttl: ttl, prefix: "rates"}, nil
}

func (r *RedisRateCache) key(equipment, level string) string {
	return strings.Join([]string{r.prefix, strings.ToUpper(equipment), level}, ":")
}

func (r *RedisRateCache) LatestRateMatrix(ctx context.Context, equipment, level string) (_ *domain.RateMatrix, err error) {
	defer obs.Time(ctx, "rates.cache.LatestRateMatrix")(&err)

	key := r.key(equipment, level)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cm cachedMatrix
		if uerr := json.Unmarshal(raw, &cm); uerr == nil {
			return &domain.RateMatrix{
				Equipment:   cm.Equipment,
				Level:       cm.Level,
				EffectiveAt: cm.EffectiveAt,
				Rates:       cm.Rates,
			}, nil
		}
		obs.Logger(ctx).Warn("rate cache entry unreadable", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		obs.Logger(ctx).Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	m, err := r.next.LatestRateMatrix(ctx, equipment, level)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedMatrix{
		Equipment:   m.Equipment,
		Level:       m.Level,
		EffectiveAt: m.EffectiveAt,
		Rates:       m.Rates,
	})
	if err != nil {
		return nil, fmt.Errorf("rate cache: marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		obs.Logger(ctx).Warn("rate cache write failed", zap.String("key", key), zap.Error(err))
	}

	return m, nil
}

// Invalidate drops the cached matrix for equipment and level, e.g. after
// new rates are seeded.
func (r *RedisRateCache) Invalidate(ctx context.Context, equipment, level string) error {
	if err := r.client.Del(ctx, r.key(equipment, level)).Err(); err != nil {
		return fmt.Errorf("rate cache: invalidate %s/%s: %w", equipment, level, err)
	}
	return nil
}
