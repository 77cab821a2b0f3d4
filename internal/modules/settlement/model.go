// README: Settlement summary persisted per trip, plus the finalize result.
package settlement

import (
	"time"

	"viax/internal/modules/fare"
	"viax/internal/types"
)

// deviationThresholdPct marks a route deviation worth flagging for review.
const deviationThresholdPct = 20.0

// Settlement is the reconciled real-vs-estimated record, upserted by trip id.
type Settlement struct {
	TripID types.ID

	RealDistanceKm  float64
	RealDurationMin int

	EstimatedDistanceKm  float64
	EstimatedDurationMin int

	DistanceDiffKm  float64
	DurationDiffMin int
	DeviationPct    float64

	EstimatedPrice float64
	ComputedPrice  int64
	AppliedPrice   int64

	HadRouteDeviation bool

	TripEndedAt time.Time
	UpdatedAt   time.Time
}

// Result is what finalize hands back to both apps: the price they must agree
// on, the itemized breakdown, and the commission split for the driver ledger.
type Result struct {
	FinalPrice      types.Money    `json:"final_price"`
	Breakdown       fare.Breakdown `json:"breakdown"`
	RealDistanceKm  float64        `json:"real_distance_km"`
	RealDurationMin int            `json:"real_duration_min"`
	RealDurationSec int            `json:"real_duration_sec"`

	EstimatedDistanceKm  float64 `json:"estimated_distance_km"`
	EstimatedDurationMin int     `json:"estimated_duration_min"`
	EstimatedPrice       float64 `json:"estimated_price"`

	DeviationPct      float64 `json:"deviation_pct"`
	HadRouteDeviation bool    `json:"had_route_deviation"`

	CommissionPct  float64 `json:"platform_commission_pct"`
	Commission     float64 `json:"platform_commission"`
	DriverEarnings float64 `json:"driver_earnings"`
}
