// README: Payment store: trip confirmation columns, disputes, account suspension.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viax/internal/modules/trip"
	"viax/internal/types"
)

// TripView is the slice of the trip row the protocol needs, loaded FOR UPDATE.
type TripView struct {
	ID                     types.ID
	ClientID               types.ID
	DriverID               *types.ID
	ClientConfirmsPaid     trip.Confirmation
	DriverConfirmsReceived trip.Confirmation
	HasDispute             bool
	DisputeID              *int64
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetTripForUpdate locks the trip row; both confirmation calls and dispute
// resolution serialize on this lock so the evaluation always sees the
// freshest combined state.
func (s *Store) GetTripForUpdate(ctx context.Context, tx pgx.Tx, tripID types.ID) (TripView, error) {
	var (
		v                      TripView
		driverID               sql.NullString
		clientPaid, driverRecv sql.NullBool
		disputeID              sql.NullInt64
	)
	err := tx.QueryRow(ctx, `
		SELECT id, client_id, driver_id,
			client_confirms_paid, driver_confirms_received,
			has_dispute, dispute_id
		FROM trips
		WHERE id = $1
		FOR UPDATE`, string(tripID),
	).Scan(&v.ID, &v.ClientID, &driverID, &clientPaid, &driverRecv, &v.HasDispute, &disputeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TripView{}, trip.ErrNotFound
	}
	if err != nil {
		return TripView{}, err
	}
	if driverID.Valid {
		id := types.ID(driverID.String)
		v.DriverID = &id
	}
	if disputeID.Valid {
		id := disputeID.Int64
		v.DisputeID = &id
	}
	v.ClientConfirmsPaid = nullableConfirmation(clientPaid)
	v.DriverConfirmsReceived = nullableConfirmation(driverRecv)
	return v, nil
}

func (s *Store) SetClientConfirmation(ctx context.Context, tx pgx.Tx, tripID types.ID, paid bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE trips SET client_confirms_paid = $1 WHERE id = $2`, paid, string(tripID))
	return err
}

func (s *Store) SetDriverConfirmation(ctx context.Context, tx pgx.Tx, tripID types.ID, received bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE trips SET driver_confirms_received = $1 WHERE id = $2`, received, string(tripID))
	return err
}

func (s *Store) InsertDispute(ctx context.Context, tx pgx.Tx, d *Dispute) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payment_disputes (
			trip_id, client_id, driver_id,
			client_confirmed_paid, driver_confirmed_received,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		string(d.TripID), string(d.ClientID), string(d.DriverID),
		d.ClientConfirmedPaid, d.DriverConfirmedReceived,
		string(d.Status), d.CreatedAt,
	).Scan(&d.ID)
}

// ActiveDisputeByTrip returns the pending dispute for a trip, if any.
func (s *Store) ActiveDisputeByTrip(ctx context.Context, tx pgx.Tx, tripID types.ID) (Dispute, bool, error) {
	var (
		d          Dispute
		resolvedAt sql.NullTime
	)
	err := tx.QueryRow(ctx, `
		SELECT id, trip_id, client_id, driver_id,
			client_confirmed_paid, driver_confirmed_received,
			status, created_at, resolved_at
		FROM payment_disputes
		WHERE trip_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, string(tripID),
	).Scan(&d.ID, &d.TripID, &d.ClientID, &d.DriverID,
		&d.ClientConfirmedPaid, &d.DriverConfirmedReceived,
		&d.Status, &d.CreatedAt, &resolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dispute{}, false, nil
	}
	if err != nil {
		return Dispute{}, false, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		d.ResolvedAt = &t
	}
	return d, true, nil
}

func (s *Store) ResolveDispute(ctx context.Context, tx pgx.Tx, disputeID int64, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE payment_disputes
		SET status = 'resolved', resolved_at = $1
		WHERE id = $2`, at, disputeID)
	return err
}

func (s *Store) MarkTripDisputed(ctx context.Context, tx pgx.Tx, tripID types.ID, disputeID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE trips SET has_dispute = TRUE, dispute_id = $1 WHERE id = $2`,
		disputeID, string(tripID))
	return err
}

func (s *Store) ClearTripDispute(ctx context.Context, tx pgx.Tx, tripID types.ID) error {
	_, err := tx.Exec(ctx,
		`UPDATE trips SET has_dispute = FALSE, dispute_id = NULL WHERE id = $1`, string(tripID))
	return err
}

func (s *Store) SuspendAccount(ctx context.Context, tx pgx.Tx, userID types.ID, disputeID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE accounts SET suspended = TRUE, active_dispute_id = $1 WHERE id = $2`,
		disputeID, string(userID))
	return err
}

func (s *Store) LiftSuspension(ctx context.Context, tx pgx.Tx, userID types.ID) error {
	_, err := tx.Exec(ctx,
		`UPDATE accounts SET suspended = FALSE, active_dispute_id = NULL WHERE id = $1`, string(userID))
	return err
}

func (s *Store) GetSuspension(ctx context.Context, userID types.ID) (SuspensionStatus, error) {
	var (
		st        SuspensionStatus
		disputeID sql.NullInt64
	)
	err := s.db.QueryRow(ctx,
		`SELECT suspended, active_dispute_id FROM accounts WHERE id = $1`, string(userID),
	).Scan(&st.Suspended, &disputeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return SuspensionStatus{}, ErrAccountNotFound
	}
	if err != nil {
		return SuspensionStatus{}, err
	}
	if disputeID.Valid {
		id := disputeID.Int64
		st.DisputeID = &id
	}
	return st, nil
}

// ClearConfirmations resets the tri-state columns to unset (test fixtures only).
func (s *Store) ClearConfirmations(ctx context.Context, tx pgx.Tx, tripID types.ID) error {
	_, err := tx.Exec(ctx, `
		UPDATE trips
		SET client_confirms_paid = NULL, driver_confirms_received = NULL
		WHERE id = $1`, string(tripID))
	return err
}

func (s *Store) DeleteDisputesByTrip(ctx context.Context, tx pgx.Tx, tripID types.ID) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM payment_disputes WHERE trip_id = $1`, string(tripID))
	return err
}

func nullableConfirmation(v sql.NullBool) trip.Confirmation {
	if !v.Valid {
		return trip.ConfirmationUnset
	}
	b := v.Bool
	return trip.ConfirmationFromBool(&b)
}
