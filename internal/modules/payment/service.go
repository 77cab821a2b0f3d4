// README: Cash confirmation protocol: dual confirmation, dispute opening, suspension.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"viax/internal/logger"
	"viax/internal/modules/trip"
	"viax/internal/types"
)

var (
	ErrNotTripClient     = errors.New("user is not the client of this trip")
	ErrNotTripDriver     = errors.New("user is not the driver of this trip")
	ErrDriverNotAssigned = errors.New("trip has no driver assigned")
	ErrNoActiveDispute   = errors.New("trip has no active dispute")
	ErrAccountNotFound   = errors.New("account not found")
)

type Service struct {
	db       *pgxpool.Pool
	store    *Store
	redis    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService wires the store with an optional redis cache for suspension
// lookups. A nil client disables caching.
func NewService(db *pgxpool.Pool, store *Store, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{db: db, store: store, redis: rdb, cacheTTL: cacheTTL, now: time.Now}
}

// ConfirmClient records the client's answer to "did you pay the driver?" and
// re-evaluates the combined state under the trip row lock.
func (s *Service) ConfirmClient(ctx context.Context, tripID, userID types.ID, paid bool) (*ConfirmationResult, error) {
	return s.confirm(ctx, tripID, userID, paid, true)
}

// ConfirmDriver records the driver's answer to "did you receive the cash?".
func (s *Service) ConfirmDriver(ctx context.Context, tripID, userID types.ID, received bool) (*ConfirmationResult, error) {
	return s.confirm(ctx, tripID, userID, received, false)
}

func (s *Service) confirm(ctx context.Context, tripID, userID types.ID, answer bool, asClient bool) (*ConfirmationResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	v, err := s.store.GetTripForUpdate(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}

	if asClient {
		if v.ClientID != userID {
			return nil, ErrNotTripClient
		}
		if err := s.store.SetClientConfirmation(ctx, tx, tripID, answer); err != nil {
			return nil, err
		}
		v.ClientConfirmsPaid = trip.ConfirmationFromBool(&answer)
	} else {
		if v.DriverID == nil {
			return nil, ErrDriverNotAssigned
		}
		if *v.DriverID != userID {
			return nil, ErrNotTripDriver
		}
		if err := s.store.SetDriverConfirmation(ctx, tx, tripID, answer); err != nil {
			return nil, err
		}
		v.DriverConfirmsReceived = trip.ConfirmationFromBool(&answer)
	}

	res := &ConfirmationResult{
		ClientConfirmsPaid:     string(v.ClientConfirmsPaid),
		DriverConfirmsReceived: string(v.DriverConfirmsReceived),
	}
	res.DisputeID = v.DisputeID

	// The only combination that escalates: the client says the cash was
	// handed over and the driver says it was not. Driver "received" with
	// client "didn't pay" means money arrived, nobody is harmed.
	disagreement := v.ClientConfirmsPaid == trip.ConfirmationYes &&
		v.DriverConfirmsReceived == trip.ConfirmationNo

	if disagreement && !v.HasDispute && v.DriverID != nil {
		d := &Dispute{
			TripID:                  tripID,
			ClientID:                v.ClientID,
			DriverID:                *v.DriverID,
			ClientConfirmedPaid:     true,
			DriverConfirmedReceived: false,
			Status:                  DisputePending,
			CreatedAt:               s.now(),
		}
		if err := s.store.InsertDispute(ctx, tx, d); err != nil {
			return nil, err
		}
		if err := s.store.MarkTripDisputed(ctx, tx, tripID, d.ID); err != nil {
			return nil, err
		}
		if err := s.store.SuspendAccount(ctx, tx, v.ClientID, d.ID); err != nil {
			return nil, err
		}
		if err := s.store.SuspendAccount(ctx, tx, *v.DriverID, d.ID); err != nil {
			return nil, err
		}
		res.DisputeOpened = true
		res.DisputeID = &d.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if res.DisputeOpened {
		logger.Warn("payment dispute opened",
			zap.String("trip_id", string(tripID)),
			zap.Int64p("dispute_id", res.DisputeID))
		s.dropSuspensionCache(ctx, v.ClientID, *v.DriverID)
	}
	return res, nil
}

// ResolveDispute closes the trip's pending dispute and lifts both suspensions.
// Only the trip's driver may resolve; the flow assumes the cash disagreement
// is sorted out in person and the driver acknowledges it.
func (s *Service) ResolveDispute(ctx context.Context, tripID, userID types.ID) (*Dispute, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	v, err := s.store.GetTripForUpdate(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	if v.DriverID == nil {
		return nil, ErrDriverNotAssigned
	}
	if *v.DriverID != userID {
		return nil, ErrNotTripDriver
	}

	d, ok, err := s.store.ActiveDisputeByTrip(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveDispute
	}

	at := s.now()
	if err := s.store.ResolveDispute(ctx, tx, d.ID, at); err != nil {
		return nil, err
	}
	if err := s.store.ClearTripDispute(ctx, tx, tripID); err != nil {
		return nil, err
	}
	if err := s.store.LiftSuspension(ctx, tx, d.ClientID); err != nil {
		return nil, err
	}
	if err := s.store.LiftSuspension(ctx, tx, d.DriverID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	d.Status = DisputeResolved
	d.ResolvedAt = &at
	logger.Info("payment dispute resolved",
		zap.String("trip_id", string(tripID)),
		zap.Int64("dispute_id", d.ID))
	s.dropSuspensionCache(ctx, d.ClientID, d.DriverID)
	return &d, nil
}

// ResetTripPaymentState is the support escape hatch: wipes both confirmations,
// deletes the trip's disputes, and lifts the suspensions they caused.
func (s *Service) ResetTripPaymentState(ctx context.Context, tripID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	v, err := s.store.GetTripForUpdate(ctx, tx, tripID)
	if err != nil {
		return err
	}

	if err := s.store.ClearConfirmations(ctx, tx, tripID); err != nil {
		return err
	}
	if err := s.store.ClearTripDispute(ctx, tx, tripID); err != nil {
		return err
	}
	if err := s.store.DeleteDisputesByTrip(ctx, tx, tripID); err != nil {
		return err
	}
	if err := s.store.LiftSuspension(ctx, tx, v.ClientID); err != nil {
		return err
	}
	if v.DriverID != nil {
		if err := s.store.LiftSuspension(ctx, tx, *v.DriverID); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	ids := []types.ID{v.ClientID}
	if v.DriverID != nil {
		ids = append(ids, *v.DriverID)
	}
	s.dropSuspensionCache(ctx, ids...)
	logger.Info("trip payment state reset", zap.String("trip_id", string(tripID)))
	return nil
}

// SuspensionStatus answers "may this user operate the app right now?". The
// cache TTL bounds how stale an answer can be after an out-of-band change.
func (s *Service) SuspensionStatus(ctx context.Context, userID types.ID) (SuspensionStatus, error) {
	key := suspensionKey(userID)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, key).Result(); err == nil {
			var st SuspensionStatus
			if err := json.Unmarshal([]byte(val), &st); err == nil {
				return st, nil
			}
		}
	}

	st, err := s.store.GetSuspension(ctx, userID)
	if err != nil {
		return SuspensionStatus{}, err
	}

	if s.redis != nil {
		if buf, err := json.Marshal(st); err == nil {
			_ = s.redis.Set(ctx, key, buf, s.cacheTTL).Err()
		}
	}
	return st, nil
}

func (s *Service) dropSuspensionCache(ctx context.Context, userIDs ...types.ID) {
	if s.redis == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, suspensionKey(id))
	}
	_ = s.redis.Del(ctx, keys...).Err()
}

func suspensionKey(userID types.ID) string {
	return fmt.Sprintf("suspension:user:%s", userID)
}
