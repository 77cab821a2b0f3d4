// README: Pure fare computation from a tariff config; no I/O.
package fare

import (
	"math"
	"time"

	"viax/internal/modules/tariff"
)

// Compute prices a trip against cfg. durationMin must already be rounded up to
// whole minutes by the caller. at is the local wall-clock moment the surcharge
// bucket is judged on (end of trip, not start).
func Compute(cfg tariff.Config, distanceKm float64, durationMin int, at time.Time) Breakdown {
	b := Breakdown{
		Base:         cfg.BaseFare,
		DistanceCost: distanceKm * cfg.CostPerKm,
		TimeCost:     float64(durationMin) * cfg.CostPerMin,
	}
	b.Subtotal = b.Base + b.DistanceCost + b.TimeCost

	if distanceKm >= cfg.LongDistanceThresholdKm {
		b.Discount = b.Subtotal * (cfg.LongDistanceDiscountPct / 100)
	}
	afterDiscount := b.Subtotal - b.Discount

	b.SurchargeKind = bucketAt(cfg, at)
	switch b.SurchargeKind {
	case SurchargeMorningPeak, SurchargeEveningPeak:
		b.Surcharge = afterDiscount * (cfg.PeakSurchargePct / 100)
	case SurchargeNight:
		b.Surcharge = afterDiscount * (cfg.NightSurchargePct / 100)
	}

	total := afterDiscount + b.Surcharge
	if total < cfg.MinFare {
		total = cfg.MinFare
	}
	if cfg.MaxFare != nil && total > *cfg.MaxFare {
		total = *cfg.MaxFare
	}
	b.BeforeRound = total
	b.Total = RoundToHundred(total)
	return b
}

// RoundToHundred rounds to the nearest 100 currency units, half up.
// Colombian cash fares are quoted in hundreds of pesos.
func RoundToHundred(v float64) int64 {
	return int64(math.Round(v/100)) * 100
}

// Split divides a final price into the platform commission and the driver's share.
func Split(total int64, commissionPct float64) (commission, driverEarnings float64) {
	commission = float64(total) * (commissionPct / 100)
	return commission, float64(total) - commission
}

// bucketAt tests the configured windows in precedence order:
// morning peak, evening peak, night. First match wins.
func bucketAt(cfg tariff.Config, at time.Time) SurchargeKind {
	clock := at.Format("15:04:05")
	switch {
	case inWindow(clock, cfg.MorningPeakStart, cfg.MorningPeakEnd):
		return SurchargeMorningPeak
	case inWindow(clock, cfg.EveningPeakStart, cfg.EveningPeakEnd):
		return SurchargeEveningPeak
	case inWindow(clock, cfg.NightStart, cfg.NightEnd):
		return SurchargeNight
	default:
		return SurchargeNone
	}
}

// inWindow compares zero-padded HH:MM:SS strings; both bounds inclusive.
// start > end means the window wraps midnight.
func inWindow(clock, start, end string) bool {
	if start == "" || end == "" {
		return false
	}
	if start <= end {
		return clock >= start && clock <= end
	}
	return clock >= start || clock <= end
}
