// README: GPS-derived tracking sample captured during a trip.
package tracking

import (
	"time"

	"viax/internal/types"
)

// Sample is one accumulated reading. DistanceKm is the total distance driven
// since trip start, not a segment delta.
type Sample struct {
	TripID       types.ID  `json:"trip_id"`
	DistanceKm   float64   `json:"distance_km"`
	ElapsedSec   int       `json:"elapsed_sec"`
	PartialPrice float64   `json:"partial_price"`
	RecordedAt   time.Time `json:"recorded_at"`
}
