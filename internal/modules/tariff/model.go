// README: Tariff configuration scoped to (company | global, vehicle type).
package tariff

import "viax/internal/types"

// Config is one pricing rule. CompanyID == nil means the global default row
// for the vehicle type; an active company row always wins over the global one.
type Config struct {
	ID          int64
	CompanyID   *types.ID
	VehicleType string

	BaseFare   float64
	CostPerKm  float64
	CostPerMin float64
	MinFare    float64
	MaxFare    *float64

	PlatformCommissionPct float64

	// Surcharge windows are zero-padded "HH:MM:SS" local wall-clock bounds.
	// Only the night window may wrap midnight (start > end).
	PeakSurchargePct float64
	MorningPeakStart string
	MorningPeakEnd   string
	EveningPeakStart string
	EveningPeakEnd   string

	NightSurchargePct float64
	NightStart        string
	NightEnd          string

	LongDistanceThresholdKm float64
	LongDistanceDiscountPct float64

	Active bool
}

// Global reports whether this is the fleet-wide default row.
func (c Config) Global() bool { return c.CompanyID == nil }
