// README: Trip handlers: request with priced estimate, read, driver assignment.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/trip"
	"viax/internal/types"
)

type TripHandler struct {
	trips *trip.Service
}

func NewTripHandler(svc *trip.Service) *TripHandler {
	return &TripHandler{trips: svc}
}

type requestTripReq struct {
	ClientID       string `json:"client_id"`
	CompanyID      string `json:"company_id"`
	VehicleType    string `json:"vehicle_type"`
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	PaymentMethod  string `json:"payment_method"`
}

type tripResponse struct {
	TripID               string       `json:"trip_id"`
	ClientID             string       `json:"client_id"`
	DriverID             *string      `json:"driver_id,omitempty"`
	CompanyID            *string      `json:"company_id,omitempty"`
	VehicleType          string       `json:"vehicle_type"`
	PickupAddress        string       `json:"pickup_address"`
	DropoffAddress       string       `json:"dropoff_address"`
	EstimatedDistanceKm  float64      `json:"estimated_distance_km"`
	EstimatedDurationMin int          `json:"estimated_duration_min"`
	EstimatedPrice       types.Money  `json:"estimated_price"`
	PaymentMethod        string       `json:"payment_method"`
	FinalPrice           *types.Money `json:"final_price,omitempty"`
	TrackedDistanceKm    *float64     `json:"tracked_distance_km,omitempty"`
	TrackedDurationSec   *int         `json:"tracked_duration_sec,omitempty"`
	HadRouteDeviation    bool         `json:"had_route_deviation"`
	ClientConfirmsPaid   string       `json:"client_confirms_paid"`
	DriverConfirms       string       `json:"driver_confirms_received"`
	HasDispute           bool         `json:"has_dispute"`
	DisputeID            *int64       `json:"dispute_id,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
}

func tripToResponse(t *trip.Trip) tripResponse {
	resp := tripResponse{
		TripID:               string(t.ID),
		ClientID:             string(t.ClientID),
		VehicleType:          t.VehicleType,
		PickupAddress:        t.PickupAddress,
		DropoffAddress:       t.DropoffAddress,
		EstimatedDistanceKm:  t.EstimatedDistanceKm,
		EstimatedDurationMin: t.EstimatedDurationMin,
		EstimatedPrice:       t.EstimatedPrice,
		PaymentMethod:        t.PaymentMethod,
		FinalPrice:           t.FinalPrice,
		TrackedDistanceKm:    t.TrackedDistanceKm,
		TrackedDurationSec:   t.TrackedDurationSec,
		HadRouteDeviation:    t.HadRouteDeviation,
		ClientConfirmsPaid:   string(t.ClientConfirmsPaid),
		DriverConfirms:       string(t.DriverConfirmsReceived),
		HasDispute:           t.HasDispute,
		DisputeID:            t.DisputeID,
		CreatedAt:            t.CreatedAt,
	}
	if t.DriverID != nil {
		v := string(*t.DriverID)
		resp.DriverID = &v
	}
	if t.CompanyID != nil {
		v := string(*t.CompanyID)
		resp.CompanyID = &v
	}
	return resp
}

func (h *TripHandler) Create(c *gin.Context) {
	var req requestTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ClientID == "" || req.PickupAddress == "" || req.DropoffAddress == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	cmd := trip.RequestCommand{
		ClientID:       types.ID(req.ClientID),
		VehicleType:    req.VehicleType,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		PaymentMethod:  req.PaymentMethod,
	}
	if req.CompanyID != "" {
		id := types.ID(req.CompanyID)
		cmd.CompanyID = &id
	}
	t, err := h.trips.Request(c.Request.Context(), cmd)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, tripToResponse(t))
}

func (h *TripHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	t, err := h.trips.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tripToResponse(t))
}

type assignDriverReq struct {
	DriverID string `json:"driver_id"`
}

func (h *TripHandler) AssignDriver(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	var req assignDriverReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	if err := h.trips.AssignDriver(c.Request.Context(), types.ID(id), types.ID(req.DriverID)); err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"trip_id": id, "driver_id": req.DriverID})
}
