// README: Trip finalize: reconcile tracked figures, price, and persist atomically.
package settlement

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"viax/internal/modules/fare"
	"viax/internal/modules/tariff"
	"viax/internal/modules/tracking"
	"viax/internal/modules/trip"
	"viax/internal/types"
)

// TariffResolver is satisfied by tariff.Service.
type TariffResolver interface {
	Resolve(ctx context.Context, companyID *types.ID, vehicleType string) (tariff.Config, error)
}

// TrackingReader is satisfied by tracking.Service.
type TrackingReader interface {
	Latest(ctx context.Context, tripID types.ID) (tracking.Sample, bool, error)
}

type Service struct {
	db       *pgxpool.Pool
	store    *Store
	trips    *trip.Store
	tariffs  TariffResolver
	tracking TrackingReader
	currency string
	now      func() time.Time
}

func NewService(db *pgxpool.Pool, store *Store, trips *trip.Store, tariffs TariffResolver, trackingReader TrackingReader, currency string) *Service {
	return &Service{
		db:       db,
		store:    store,
		trips:    trips,
		tariffs:  tariffs,
		tracking: trackingReader,
		currency: currency,
		now:      time.Now,
	}
}

type FinalizeCommand struct {
	TripID types.ID
	// Driver-app figures; both optional. The stopwatch duration outranks the
	// tracking sample's elapsed time because it spans the whole trip.
	DistanceKm  *float64
	DurationSec *int
}

// Finalize reconciles real vs estimated figures and persists the settlement
// and the trip update in one transaction. Safe to retry: the trip row lock
// serializes concurrent calls and the settlement upsert overwrites.
func (s *Service) Finalize(ctx context.Context, cmd FinalizeCommand) (*Result, error) {
	if cmd.TripID == "" {
		return nil, trip.ErrNotFound
	}

	sample, tracked, err := s.tracking.Latest(ctx, cmd.TripID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := s.trips.GetForUpdate(ctx, tx, cmd.TripID)
	if err != nil {
		return nil, err
	}

	realKm, realSec := realFigures(t, sample, tracked, cmd)
	realMin := ceilMinutes(realSec)

	vehicleType := t.VehicleType
	if vehicleType == "" {
		vehicleType = "moto"
	}
	cfg, err := s.tariffs.Resolve(ctx, t.CompanyID, vehicleType)
	if err != nil {
		return nil, err
	}

	// Surcharge bucket is judged at end of trip, not at request time.
	endedAt := s.now()
	breakdown := fare.Compute(cfg, realKm, realMin, endedAt)

	deviationPct := 0.0
	if t.EstimatedDistanceKm > 0 {
		deviationPct = (realKm - t.EstimatedDistanceKm) / t.EstimatedDistanceKm * 100
	}
	hadDeviation := math.Abs(deviationPct) > deviationThresholdPct

	sm := &Settlement{
		TripID:               t.ID,
		RealDistanceKm:       realKm,
		RealDurationMin:      realMin,
		EstimatedDistanceKm:  t.EstimatedDistanceKm,
		EstimatedDurationMin: t.EstimatedDurationMin,
		DistanceDiffKm:       realKm - t.EstimatedDistanceKm,
		DurationDiffMin:      realMin - t.EstimatedDurationMin,
		DeviationPct:         deviationPct,
		EstimatedPrice:       float64(t.EstimatedPrice.Amount),
		ComputedPrice:        breakdown.Total,
		AppliedPrice:         breakdown.Total,
		HadRouteDeviation:    hadDeviation,
		TripEndedAt:          endedAt,
		UpdatedAt:            endedAt,
	}
	if err := s.store.Upsert(ctx, tx, sm); err != nil {
		return nil, err
	}
	if err := s.trips.ApplySettlement(ctx, tx, t.ID, breakdown.Total, realKm, realSec, hadDeviation); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	commission, earnings := fare.Split(breakdown.Total, cfg.PlatformCommissionPct)
	return &Result{
		FinalPrice:           types.Money{Amount: breakdown.Total, Currency: s.currency},
		Breakdown:            breakdown,
		RealDistanceKm:       realKm,
		RealDurationMin:      realMin,
		RealDurationSec:      realSec,
		EstimatedDistanceKm:  t.EstimatedDistanceKm,
		EstimatedDurationMin: t.EstimatedDurationMin,
		EstimatedPrice:       float64(t.EstimatedPrice.Amount),
		DeviationPct:         deviationPct,
		HadRouteDeviation:    hadDeviation,
		CommissionPct:        cfg.PlatformCommissionPct,
		Commission:           commission,
		DriverEarnings:       earnings,
	}, nil
}

func (s *Service) Get(ctx context.Context, tripID types.ID) (*Settlement, error) {
	return s.store.Get(ctx, tripID)
}

// realFigures applies the input precedence. With a tracking sample present its
// accumulated distance is authoritative; the driver's stopwatch duration still
// wins over the sample's elapsed time. Without a sample, driver-reported
// figures, then the trip's stored tracked fields, then zero. The original
// estimate is never used as a "real" figure.
func realFigures(t *trip.Trip, sample tracking.Sample, tracked bool, cmd FinalizeCommand) (km float64, sec int) {
	if tracked {
		km = sample.DistanceKm
		if cmd.DurationSec != nil {
			sec = *cmd.DurationSec
		} else {
			sec = sample.ElapsedSec
		}
		return km, sec
	}

	switch {
	case cmd.DistanceKm != nil:
		km = *cmd.DistanceKm
	case t.TrackedDistanceKm != nil:
		km = *t.TrackedDistanceKm
	}
	switch {
	case cmd.DurationSec != nil:
		sec = *cmd.DurationSec
	case t.TrackedDurationSec != nil:
		sec = *t.TrackedDurationSec
	}
	return km, sec
}

// ceilMinutes bills partial minutes as full minutes.
func ceilMinutes(sec int) int {
	if sec <= 0 {
		return 0
	}
	return (sec + 59) / 60
}
