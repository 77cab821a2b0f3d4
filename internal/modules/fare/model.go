// README: Fare breakdown returned by the calculator.
package fare

// SurchargeKind names the time-of-day bucket that applied.
type SurchargeKind string

const (
	SurchargeNone        SurchargeKind = "normal"
	SurchargeMorningPeak SurchargeKind = "morning_peak"
	SurchargeEveningPeak SurchargeKind = "evening_peak"
	SurchargeNight       SurchargeKind = "night"
)

// Breakdown itemizes one fare computation. Total is the only rounded figure;
// the components keep their fractional values for display and auditing.
type Breakdown struct {
	Base          float64       `json:"base_fare"`
	DistanceCost  float64       `json:"distance_cost"`
	TimeCost      float64       `json:"time_cost"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"long_distance_discount"`
	Surcharge     float64       `json:"surcharge"`
	SurchargeKind SurchargeKind `json:"surcharge_kind"`
	BeforeRound   float64       `json:"total_before_rounding"`
	Total         int64         `json:"total"`
}
