// README: Settlement store; upsert keyed by trip id so finalize is idempotent.
package settlement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viax/internal/types"
)

var ErrNotFound = errors.New("settlement not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert inserts or fully overwrites the settlement row inside tx. Re-running
// finalize replaces the summary, it never accumulates.
func (s *Store) Upsert(ctx context.Context, tx pgx.Tx, sm *Settlement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO trip_settlements (
			trip_id,
			real_distance_km, real_duration_min,
			estimated_distance_km, estimated_duration_min,
			distance_diff_km, duration_diff_min, deviation_pct,
			estimated_price, computed_price, applied_price,
			had_route_deviation, trip_ended_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (trip_id) DO UPDATE SET
			real_distance_km = EXCLUDED.real_distance_km,
			real_duration_min = EXCLUDED.real_duration_min,
			estimated_distance_km = EXCLUDED.estimated_distance_km,
			estimated_duration_min = EXCLUDED.estimated_duration_min,
			distance_diff_km = EXCLUDED.distance_diff_km,
			duration_diff_min = EXCLUDED.duration_diff_min,
			deviation_pct = EXCLUDED.deviation_pct,
			estimated_price = EXCLUDED.estimated_price,
			computed_price = EXCLUDED.computed_price,
			applied_price = EXCLUDED.applied_price,
			had_route_deviation = EXCLUDED.had_route_deviation,
			trip_ended_at = EXCLUDED.trip_ended_at,
			updated_at = EXCLUDED.updated_at`,
		string(sm.TripID),
		sm.RealDistanceKm, sm.RealDurationMin,
		sm.EstimatedDistanceKm, sm.EstimatedDurationMin,
		sm.DistanceDiffKm, sm.DurationDiffMin, sm.DeviationPct,
		sm.EstimatedPrice, sm.ComputedPrice, sm.AppliedPrice,
		sm.HadRouteDeviation, sm.TripEndedAt, sm.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, tripID types.ID) (*Settlement, error) {
	var sm Settlement
	err := s.db.QueryRow(ctx, `
		SELECT trip_id,
			real_distance_km, real_duration_min,
			estimated_distance_km, estimated_duration_min,
			distance_diff_km, duration_diff_min, deviation_pct,
			estimated_price, computed_price, applied_price,
			had_route_deviation, trip_ended_at, updated_at
		FROM trip_settlements
		WHERE trip_id = $1`, string(tripID),
	).Scan(
		&sm.TripID,
		&sm.RealDistanceKm, &sm.RealDurationMin,
		&sm.EstimatedDistanceKm, &sm.EstimatedDurationMin,
		&sm.DistanceDiffKm, &sm.DurationDiffMin, &sm.DeviationPct,
		&sm.EstimatedPrice, &sm.ComputedPrice, &sm.AppliedPrice,
		&sm.HadRouteDeviation, &sm.TripEndedAt, &sm.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sm, nil
}

// CountForTrip exists for tests asserting upsert-not-append semantics.
func (s *Store) CountForTrip(ctx context.Context, tripID types.ID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM trip_settlements WHERE trip_id = $1`, string(tripID),
	).Scan(&n)
	return n, err
}
