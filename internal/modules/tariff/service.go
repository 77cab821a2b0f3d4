// README: Tariff service adds a redis read-through cache over the store.
package tariff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"viax/internal/types"
)

type Service struct {
	store    *Store
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewService wires the store with an optional redis cache. A nil client
// disables caching; every Resolve goes straight to Postgres.
func NewService(store *Store, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{store: store, redis: rdb, cacheTTL: cacheTTL}
}

// Resolve checks the company key and then the global key before Postgres. A
// fallback hit is cached under the GLOBAL key, never the company's: that keeps
// one cache entry per row, so updating the global row invalidates every
// company that was falling back to it. A cached global entry cannot shadow an
// override, because Upsert drops the global key whenever an override changes.
func (s *Service) Resolve(ctx context.Context, companyID *types.ID, vehicleType string) (Config, error) {
	if s.redis != nil {
		keys := []string{cacheKey(companyID, vehicleType)}
		if companyID != nil {
			keys = append(keys, cacheKey(nil, vehicleType))
		}
		for _, key := range keys {
			if val, err := s.redis.Get(ctx, key).Result(); err == nil {
				var cfg Config
				if err := json.Unmarshal([]byte(val), &cfg); err == nil {
					return cfg, nil
				}
			}
		}
	}

	cfg, err := s.store.Resolve(ctx, companyID, vehicleType)
	if err != nil {
		return Config{}, err
	}

	if s.redis != nil {
		if buf, err := json.Marshal(cfg); err == nil {
			_ = s.redis.Set(ctx, cacheKey(cfg.CompanyID, vehicleType), buf, s.cacheTTL).Err()
		}
	}
	return cfg, nil
}

func (s *Service) ListForCompany(ctx context.Context, companyID types.ID) ([]Config, error) {
	return s.store.ListForCompany(ctx, companyID)
}

// Upsert writes the override and drops the cache entries the write may shadow.
// The global entry is dropped too: a new company override changes what Resolve
// returns for that company even though the global row itself is untouched.
func (s *Service) Upsert(ctx context.Context, cfg *Config) error {
	if err := s.store.Upsert(ctx, cfg); err != nil {
		return err
	}
	if s.redis != nil {
		keys := []string{cacheKey(cfg.CompanyID, cfg.VehicleType)}
		if cfg.CompanyID != nil {
			keys = append(keys, cacheKey(nil, cfg.VehicleType))
		}
		_ = s.redis.Del(ctx, keys...).Err()
	}
	return nil
}

func cacheKey(companyID *types.ID, vehicleType string) string {
	scope := "global"
	if companyID != nil {
		scope = string(*companyID)
	}
	return fmt.Sprintf("tariff:%s:%s", scope, vehicleType)
}
