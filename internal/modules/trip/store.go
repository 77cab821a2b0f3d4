// README: Trip store backed by PostgreSQL; row-lock reads for settlement.
package trip

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viax/internal/types"
)

var ErrNotFound = errors.New("trip not found")

const tripColumns = `
	id, company_id, vehicle_type, client_id, driver_id,
	pickup_address, dropoff_address,
	estimated_distance_km, estimated_duration_min, estimated_price, payment_method,
	tracked_distance_km, tracked_duration_sec, final_price,
	price_tracking_adjusted, had_route_deviation,
	client_confirms_paid, driver_confirms_received, has_dispute, dispute_id,
	created_at`

type Store struct {
	db       *pgxpool.Pool
	currency string
}

func NewStore(db *pgxpool.Pool, currency string) *Store {
	return &Store{db: db, currency: currency}
}

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, company_id, vehicle_type, client_id, driver_id,
			pickup_address, dropoff_address,
			estimated_distance_km, estimated_duration_min, estimated_price,
			payment_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(t.ID),
		idPtr(t.CompanyID),
		t.VehicleType,
		string(t.ClientID),
		idPtr(t.DriverID),
		t.PickupAddress,
		t.DropoffAddress,
		t.EstimatedDistanceKm,
		t.EstimatedDurationMin,
		t.EstimatedPrice.Amount,
		t.PaymentMethod,
		t.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, string(id))
	return s.scan(row)
}

// GetForUpdate loads the trip under a row lock inside tx. Concurrent finalize
// and confirmation calls serialize here.
func (s *Store) GetForUpdate(ctx context.Context, tx pgx.Tx, id types.ID) (*Trip, error) {
	row := tx.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, string(id))
	return s.scan(row)
}

// ApplySettlement writes the reconciled figures onto the trip inside tx.
func (s *Store) ApplySettlement(ctx context.Context, tx pgx.Tx, id types.ID, finalPrice int64, distanceKm float64, durationSec int, hadDeviation bool) error {
	tag, err := tx.Exec(ctx, `
		UPDATE trips SET
			final_price = $1,
			tracked_distance_km = $2,
			tracked_duration_sec = $3,
			price_tracking_adjusted = TRUE,
			had_route_deviation = $4
		WHERE id = $5`,
		finalPrice, distanceKm, durationSec, hadDeviation, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

// AssignDriver records the driver once matching (an external collaborator)
// settles on one.
func (s *Store) AssignDriver(ctx context.Context, id types.ID, driverID types.ID) error {
	tag, err := s.db.Exec(ctx, `UPDATE trips SET driver_id = $1 WHERE id = $2`, string(driverID), string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scan(row pgx.Row) (*Trip, error) {
	var (
		t                      Trip
		companyID, driverID    sql.NullString
		trackedKm              sql.NullFloat64
		trackedSec             sql.NullInt64
		finalPrice, disputeID  sql.NullInt64
		clientPaid, driverRecv sql.NullBool
	)
	err := row.Scan(
		&t.ID, &companyID, &t.VehicleType, &t.ClientID, &driverID,
		&t.PickupAddress, &t.DropoffAddress,
		&t.EstimatedDistanceKm, &t.EstimatedDurationMin, &t.EstimatedPrice.Amount, &t.PaymentMethod,
		&trackedKm, &trackedSec, &finalPrice,
		&t.PriceTrackingAdjusted, &t.HadRouteDeviation,
		&clientPaid, &driverRecv, &t.HasDispute, &disputeID,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.EstimatedPrice.Currency = s.currency
	if companyID.Valid {
		id := types.ID(companyID.String)
		t.CompanyID = &id
	}
	if driverID.Valid {
		id := types.ID(driverID.String)
		t.DriverID = &id
	}
	if trackedKm.Valid {
		v := trackedKm.Float64
		t.TrackedDistanceKm = &v
	}
	if trackedSec.Valid {
		v := int(trackedSec.Int64)
		t.TrackedDurationSec = &v
	}
	if finalPrice.Valid {
		t.FinalPrice = &types.Money{Amount: finalPrice.Int64, Currency: s.currency}
	}
	if disputeID.Valid {
		v := disputeID.Int64
		t.DisputeID = &v
	}
	t.ClientConfirmsPaid = confirmationFromNull(clientPaid)
	t.DriverConfirmsReceived = confirmationFromNull(driverRecv)
	return &t, nil
}

func confirmationFromNull(v sql.NullBool) Confirmation {
	if !v.Valid {
		return ConfirmationUnset
	}
	b := v.Bool
	return ConfirmationFromBool(&b)
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
