// README: Trip aggregate and the tri-state payment confirmation value.
package trip

import (
	"time"

	"viax/internal/types"
)

// Confirmation is a tri-state answer. "Not yet answered" is load-bearing:
// the disagreement rule only runs once both sides have answered.
type Confirmation string

const (
	ConfirmationUnset Confirmation = "unset"
	ConfirmationYes   Confirmation = "yes"
	ConfirmationNo    Confirmation = "no"
)

// Answered reports whether a side has confirmed either way.
func (c Confirmation) Answered() bool { return c == ConfirmationYes || c == ConfirmationNo }

// ConfirmationFromBool maps a nullable DB boolean onto the tri-state.
func ConfirmationFromBool(v *bool) Confirmation {
	switch {
	case v == nil:
		return ConfirmationUnset
	case *v:
		return ConfirmationYes
	default:
		return ConfirmationNo
	}
}

// Bool returns the nullable DB representation.
func (c Confirmation) Bool() *bool {
	switch c {
	case ConfirmationYes:
		v := true
		return &v
	case ConfirmationNo:
		v := false
		return &v
	default:
		return nil
	}
}

type Trip struct {
	ID          types.ID
	CompanyID   *types.ID
	VehicleType string
	ClientID    types.ID
	DriverID    *types.ID

	PickupAddress  string
	DropoffAddress string

	EstimatedDistanceKm  float64
	EstimatedDurationMin int
	EstimatedPrice       types.Money
	PaymentMethod        string

	// Tracked figures stay nil until settlement; estimates and reals are
	// never conflated.
	TrackedDistanceKm     *float64
	TrackedDurationSec    *int
	FinalPrice            *types.Money
	PriceTrackingAdjusted bool
	HadRouteDeviation     bool

	ClientConfirmsPaid     Confirmation
	DriverConfirmsReceived Confirmation
	HasDispute             bool
	DisputeID              *int64

	CreatedAt time.Time
}
