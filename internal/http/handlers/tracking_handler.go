// README: Tracking handlers: sample ingestion and latest reading.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/tracking"
	"viax/internal/types"
)

type TrackingHandler struct {
	tracking *tracking.Service
}

func NewTrackingHandler(svc *tracking.Service) *TrackingHandler {
	return &TrackingHandler{tracking: svc}
}

type recordSampleReq struct {
	DistanceKm   float64    `json:"distance_km"`
	ElapsedSec   int        `json:"elapsed_sec"`
	PartialPrice float64    `json:"partial_price"`
	RecordedAt   *time.Time `json:"recorded_at"`
}

func (h *TrackingHandler) Record(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	var req recordSampleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sample := tracking.Sample{
		TripID:       types.ID(id),
		DistanceKm:   req.DistanceKm,
		ElapsedSec:   req.ElapsedSec,
		PartialPrice: req.PartialPrice,
	}
	if req.RecordedAt != nil {
		sample.RecordedAt = *req.RecordedAt
	}
	if err := h.tracking.Record(c.Request.Context(), sample); err != nil {
		writeTrackingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"trip_id": id, "distance_km": req.DistanceKm})
}

func (h *TrackingHandler) Latest(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	sample, ok, err := h.tracking.Latest(c.Request.Context(), types.ID(id))
	if err != nil {
		writeTrackingError(c, err)
		return
	}
	if !ok {
		writeError(c, http.StatusNotFound, "no tracking samples for trip")
		return
	}
	writeJSON(c, http.StatusOK, sample)
}
