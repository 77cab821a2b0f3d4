// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/payment"
	"viax/internal/modules/settlement"
	"viax/internal/modules/tariff"
	"viax/internal/modules/tracking"
	"viax/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts alphanumerics plus '_' and '-', at most 64 chars. Trip IDs
// are generated 32-char hex, but client and driver IDs come from the identity
// provider and may carry separators.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeTripError(c *gin.Context, err error) {
	switch err {
	case trip.ErrBadRequest:
		writeError(c, http.StatusBadRequest, err.Error())
	case trip.ErrNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case trip.ErrNoEstimator:
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case tariff.ErrNoTariff:
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeTrackingError(c *gin.Context, err error) {
	switch err {
	case tracking.ErrBadSample:
		writeError(c, http.StatusBadRequest, err.Error())
	case trip.ErrNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeSettlementError(c *gin.Context, err error) {
	switch err {
	case trip.ErrNotFound, settlement.ErrNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case tariff.ErrNoTariff:
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writePaymentError(c *gin.Context, err error) {
	switch err {
	case trip.ErrNotFound, payment.ErrAccountNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case payment.ErrNotTripClient, payment.ErrNotTripDriver:
		writeError(c, http.StatusForbidden, err.Error())
	case payment.ErrDriverNotAssigned, payment.ErrNoActiveDispute:
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
