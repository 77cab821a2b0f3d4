// README: Tracking store backed by PostgreSQL with a redis latest-sample cache.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"viax/internal/types"
)

type Store struct {
	db       *pgxpool.Pool
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewStore wires Postgres with an optional redis cache for the latest sample
// per trip. A nil client falls back to Postgres on every read.
func NewStore(db *pgxpool.Pool, rdb *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{db: db, redis: rdb, cacheTTL: cacheTTL}
}

func (s *Store) Append(ctx context.Context, sample Sample) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_tracking_samples (
			trip_id, distance_km, elapsed_sec, partial_price, recorded_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(sample.TripID),
		sample.DistanceKm,
		sample.ElapsedSec,
		sample.PartialPrice,
		sample.RecordedAt,
	)
	if err != nil {
		return err
	}
	if s.redis != nil {
		s.cacheLatest(ctx, sample)
	}
	return nil
}

// cacheLatest refreshes the latest-sample key unless the cached entry is more
// recent. Samples can arrive out of order or be retried; the cache must agree
// with the most-recent-by-recorded_at row the SQL fallback would return.
func (s *Store) cacheLatest(ctx context.Context, sample Sample) {
	key := latestKey(sample.TripID)
	if val, err := s.redis.Get(ctx, key).Result(); err == nil {
		var cached Sample
		if err := json.Unmarshal([]byte(val), &cached); err == nil && supersedes(cached, sample) {
			return
		}
	}
	if buf, err := json.Marshal(sample); err == nil {
		_ = s.redis.Set(ctx, key, buf, s.cacheTTL).Err()
	}
}

// supersedes reports whether the cached sample should survive the incoming one.
func supersedes(cached, incoming Sample) bool {
	return cached.RecordedAt.After(incoming.RecordedAt)
}

// Latest returns the most recent sample by recorded_at, and whether one exists.
func (s *Store) Latest(ctx context.Context, tripID types.ID) (Sample, bool, error) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, latestKey(tripID)).Result()
		if err == nil {
			var sample Sample
			if err := json.Unmarshal([]byte(val), &sample); err == nil {
				return sample, true, nil
			}
		}
	}

	var sample Sample
	err := s.db.QueryRow(ctx, `
		SELECT trip_id, distance_km, elapsed_sec, partial_price, recorded_at
		FROM trip_tracking_samples
		WHERE trip_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, string(tripID),
	).Scan(&sample.TripID, &sample.DistanceKm, &sample.ElapsedSec, &sample.PartialPrice, &sample.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sample{}, false, nil
	}
	if err != nil {
		return Sample{}, false, err
	}
	return sample, true, nil
}

func latestKey(tripID types.ID) string {
	return fmt.Sprintf("tracking:trip:%s:latest", string(tripID))
}
