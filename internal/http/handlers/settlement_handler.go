// README: Settlement handlers: finalize a trip and read back the summary.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/settlement"
	"viax/internal/types"
)

type SettlementHandler struct {
	settlements *settlement.Service
}

func NewSettlementHandler(svc *settlement.Service) *SettlementHandler {
	return &SettlementHandler{settlements: svc}
}

type finalizeReq struct {
	DistanceKm  *float64 `json:"distance_km"`
	DurationSec *int     `json:"duration_sec"`
}

func (h *SettlementHandler) Finalize(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	// Empty body is fine: finalize falls back to tracked figures.
	var req finalizeReq
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	res, err := h.settlements.Finalize(c.Request.Context(), settlement.FinalizeCommand{
		TripID:      types.ID(id),
		DistanceKm:  req.DistanceKm,
		DurationSec: req.DurationSec,
	})
	if err != nil {
		writeSettlementError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *SettlementHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	sm, err := h.settlements.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeSettlementError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"trip_id":                sm.TripID,
		"real_distance_km":       sm.RealDistanceKm,
		"real_duration_min":      sm.RealDurationMin,
		"estimated_distance_km":  sm.EstimatedDistanceKm,
		"estimated_duration_min": sm.EstimatedDurationMin,
		"distance_diff_km":       sm.DistanceDiffKm,
		"duration_diff_min":      sm.DurationDiffMin,
		"deviation_pct":          sm.DeviationPct,
		"estimated_price":        sm.EstimatedPrice,
		"computed_price":         sm.ComputedPrice,
		"applied_price":          sm.AppliedPrice,
		"had_route_deviation":    sm.HadRouteDeviation,
		"trip_ended_at":          sm.TripEndedAt,
		"updated_at":             sm.UpdatedAt,
	})
}
