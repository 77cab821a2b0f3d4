// README: Calculator tests: rounding law, clamps, discount, surcharge buckets.
package fare

import (
	"math"
	"testing"
	"time"

	"viax/internal/modules/tariff"
)

func baseConfig() tariff.Config {
	return tariff.Config{
		VehicleType:             "moto",
		BaseFare:                4500,
		CostPerKm:               1200,
		CostPerMin:              100,
		MinFare:                 5000,
		PlatformCommissionPct:   20,
		PeakSurchargePct:        15,
		MorningPeakStart:        "06:00:00",
		MorningPeakEnd:          "09:00:00",
		EveningPeakStart:        "17:00:00",
		EveningPeakEnd:          "20:00:00",
		NightSurchargePct:       10,
		NightStart:              "22:00:00",
		NightEnd:                "05:00:00",
		LongDistanceThresholdKm: 25,
		LongDistanceDiscountPct: 10,
		Active:                  true,
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestComputeItemized(t *testing.T) {
	b := Compute(baseConfig(), 7, 20, at(12, 0))

	if b.Base != 4500 {
		t.Errorf("base = %v, want 4500", b.Base)
	}
	if b.DistanceCost != 8400 {
		t.Errorf("distance cost = %v, want 8400", b.DistanceCost)
	}
	if b.TimeCost != 2000 {
		t.Errorf("time cost = %v, want 2000", b.TimeCost)
	}
	if b.Subtotal != 14900 {
		t.Errorf("subtotal = %v, want 14900", b.Subtotal)
	}
	if b.Discount != 0 || b.Surcharge != 0 {
		t.Errorf("unexpected discount %v / surcharge %v at midday short trip", b.Discount, b.Surcharge)
	}
	if b.SurchargeKind != SurchargeNone {
		t.Errorf("surcharge kind = %s, want %s", b.SurchargeKind, SurchargeNone)
	}
	if b.Total != 14900 {
		t.Errorf("total = %d, want 14900", b.Total)
	}
}

func TestRoundToHundred(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{8300, 8300},
		{8340, 8300},
		{8349, 8300},
		{8350, 8400}, // half rounds up
		{8399, 8400},
		{49, 0},
		{50, 100},
		{14900, 14900},
	}
	for _, tc := range cases {
		if got := RoundToHundred(tc.in); got != tc.want {
			t.Errorf("RoundToHundred(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestComputeMinFareFloor(t *testing.T) {
	cfg := baseConfig()
	cfg.MinFare = 6000

	// 1 km, 2 min: 4500 + 1200 + 200 = 5900 < floor.
	b := Compute(cfg, 1, 2, at(12, 0))
	if b.BeforeRound != 6000 {
		t.Errorf("before round = %v, want floor 6000", b.BeforeRound)
	}
	if b.Total != 6000 {
		t.Errorf("total = %d, want 6000", b.Total)
	}
}

func TestComputeMaxFareCap(t *testing.T) {
	cfg := baseConfig()
	maxFare := 20000.0
	cfg.MaxFare = &maxFare

	b := Compute(cfg, 18, 40, at(12, 0)) // 4500 + 21600 + 4000 = 30100
	if b.BeforeRound != 20000 {
		t.Errorf("before round = %v, want cap 20000", b.BeforeRound)
	}
	if b.Total != 20000 {
		t.Errorf("total = %d, want 20000", b.Total)
	}
}

func TestComputeLongDistanceDiscount(t *testing.T) {
	cfg := baseConfig()

	// At exactly the threshold the discount applies.
	b := Compute(cfg, 25, 50, at(12, 0))
	subtotal := 4500 + 25*1200 + 50*100.0
	wantDiscount := subtotal * 0.10
	if math.Abs(b.Discount-wantDiscount) > 1e-9 {
		t.Errorf("discount = %v, want %v", b.Discount, wantDiscount)
	}
	if b.Total != RoundToHundred(subtotal-wantDiscount) {
		t.Errorf("total = %d, want %d", b.Total, RoundToHundred(subtotal-wantDiscount))
	}

	// Just under the threshold there is no discount.
	b = Compute(cfg, 24.9, 50, at(12, 0))
	if b.Discount != 0 {
		t.Errorf("discount below threshold = %v, want 0", b.Discount)
	}
}

func TestSurchargeBuckets(t *testing.T) {
	cfg := baseConfig()
	cases := []struct {
		name string
		at   time.Time
		want SurchargeKind
	}{
		{"midday", at(12, 0), SurchargeNone},
		{"morning peak start inclusive", at(6, 0), SurchargeMorningPeak},
		{"morning peak end inclusive", at(9, 0), SurchargeMorningPeak},
		{"just after morning peak", at(9, 1), SurchargeNone},
		{"evening peak", at(18, 30), SurchargeEveningPeak},
		{"night before midnight", at(23, 15), SurchargeNight},
		{"night wraps past midnight", at(2, 0), SurchargeNight},
		{"night end inclusive", at(5, 0), SurchargeNight},
		{"after night window", at(5, 1), SurchargeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Compute(cfg, 5, 10, tc.at)
			if b.SurchargeKind != tc.want {
				t.Errorf("surcharge kind = %s, want %s", b.SurchargeKind, tc.want)
			}
		})
	}
}

func TestSurchargePrecedenceOverlap(t *testing.T) {
	// With overlapping windows the morning peak is tested first and wins.
	cfg := baseConfig()
	cfg.NightStart = "00:00:00"
	cfg.NightEnd = "23:59:59"

	b := Compute(cfg, 5, 10, at(7, 0))
	if b.SurchargeKind != SurchargeMorningPeak {
		t.Errorf("surcharge kind = %s, want %s", b.SurchargeKind, SurchargeMorningPeak)
	}
}

func TestSurchargeAppliedAfterDiscount(t *testing.T) {
	cfg := baseConfig()

	b := Compute(cfg, 30, 60, at(23, 0)) // long distance, night
	subtotal := 4500 + 30*1200 + 60*100.0
	discount := subtotal * 0.10
	surcharge := (subtotal - discount) * 0.10
	if math.Abs(b.Surcharge-surcharge) > 1e-9 {
		t.Errorf("surcharge = %v, want %v", b.Surcharge, surcharge)
	}
	if b.Total != RoundToHundred(subtotal-discount+surcharge) {
		t.Errorf("total = %d, want %d", b.Total, RoundToHundred(subtotal-discount+surcharge))
	}
}

func TestEmptyWindowsNeverMatch(t *testing.T) {
	cfg := baseConfig()
	cfg.MorningPeakStart, cfg.MorningPeakEnd = "", ""
	cfg.EveningPeakStart, cfg.EveningPeakEnd = "", ""
	cfg.NightStart, cfg.NightEnd = "", ""

	b := Compute(cfg, 5, 10, at(7, 0))
	if b.SurchargeKind != SurchargeNone {
		t.Errorf("surcharge kind = %s, want %s", b.SurchargeKind, SurchargeNone)
	}
}

func TestSplit(t *testing.T) {
	commission, earnings := Split(14900, 20)
	if commission != 2980 {
		t.Errorf("commission = %v, want 2980", commission)
	}
	if earnings != 11920 {
		t.Errorf("earnings = %v, want 11920", earnings)
	}
	if commission+earnings != 14900 {
		t.Errorf("split does not add up: %v + %v", commission, earnings)
	}
}
