// README: Trip service creates priced trip requests from route estimates.
package trip

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"viax/internal/modules/fare"
	"viax/internal/modules/tariff"
	"viax/internal/types"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrNoEstimator = errors.New("route estimator not configured")
)

// RouteEstimator supplies driving distance and duration between two addresses.
type RouteEstimator interface {
	EstimateRoute(ctx context.Context, origin, destination string) (distanceKm float64, duration time.Duration, err error)
}

// TariffResolver is satisfied by tariff.Service.
type TariffResolver interface {
	Resolve(ctx context.Context, companyID *types.ID, vehicleType string) (tariff.Config, error)
}

type Service struct {
	store     *Store
	estimator RouteEstimator
	tariffs   TariffResolver
	currency  string
	now       func() time.Time
}

func NewService(store *Store, estimator RouteEstimator, tariffs TariffResolver, currency string) *Service {
	return &Service{
		store:     store,
		estimator: estimator,
		tariffs:   tariffs,
		currency:  currency,
		now:       time.Now,
	}
}

type RequestCommand struct {
	ClientID       types.ID
	CompanyID      *types.ID
	VehicleType    string
	PickupAddress  string
	DropoffAddress string
	PaymentMethod  string
}

// Request creates a trip with a priced estimate. The estimate is priced with
// the same tariff pipeline settlement uses, at request-time wall clock, so the
// rider sees a figure comparable to the final one.
func (s *Service) Request(ctx context.Context, cmd RequestCommand) (*Trip, error) {
	if cmd.ClientID == "" || cmd.PickupAddress == "" || cmd.DropoffAddress == "" {
		return nil, ErrBadRequest
	}
	if s.estimator == nil {
		return nil, ErrNoEstimator
	}
	vehicleType := cmd.VehicleType
	if vehicleType == "" {
		vehicleType = "moto"
	}
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = "efectivo"
	}

	distanceKm, duration, err := s.estimator.EstimateRoute(ctx, cmd.PickupAddress, cmd.DropoffAddress)
	if err != nil {
		return nil, err
	}
	durationMin := int((duration + time.Minute - 1) / time.Minute)

	cfg, err := s.tariffs.Resolve(ctx, cmd.CompanyID, vehicleType)
	if err != nil {
		return nil, err
	}
	estimate := fare.Compute(cfg, distanceKm, durationMin, s.now())

	t := &Trip{
		ID:                     newID(),
		CompanyID:              cmd.CompanyID,
		VehicleType:            vehicleType,
		ClientID:               cmd.ClientID,
		PickupAddress:          cmd.PickupAddress,
		DropoffAddress:         cmd.DropoffAddress,
		EstimatedDistanceKm:    distanceKm,
		EstimatedDurationMin:   durationMin,
		EstimatedPrice:         types.Money{Amount: estimate.Total, Currency: s.currency},
		PaymentMethod:          cmd.PaymentMethod,
		ClientConfirmsPaid:     ConfirmationUnset,
		DriverConfirmsReceived: ConfirmationUnset,
		CreatedAt:              s.now(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) AssignDriver(ctx context.Context, id types.ID, driverID types.ID) error {
	if driverID == "" {
		return ErrBadRequest
	}
	return s.store.AssignDriver(ctx, id, driverID)
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
