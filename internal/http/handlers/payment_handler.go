// README: Payment handlers: cash confirmations, dispute resolution, suspension.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/payment"
	"viax/internal/types"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: svc}
}

type confirmReq struct {
	UserID    string `json:"user_id"`
	Confirmed *bool  `json:"confirmed"`
}

func (h *PaymentHandler) ConfirmClient(c *gin.Context) {
	h.confirm(c, h.payments.ConfirmClient)
}

func (h *PaymentHandler) ConfirmDriver(c *gin.Context) {
	h.confirm(c, h.payments.ConfirmDriver)
}

func (h *PaymentHandler) confirm(c *gin.Context, fn func(ctx context.Context, tripID, userID types.ID, answer bool) (*payment.ConfirmationResult, error)) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.Confirmed == nil {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	res, err := fn(c.Request.Context(), types.ID(id), types.ID(req.UserID), *req.Confirmed)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type resolveReq struct {
	UserID string `json:"user_id"`
}

func (h *PaymentHandler) Resolve(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		writeError(c, http.StatusBadRequest, "missing user_id")
		return
	}
	d, err := h.payments.ResolveDispute(c.Request.Context(), types.ID(id), types.ID(req.UserID))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"dispute_id":  d.ID,
		"trip_id":     d.TripID,
		"status":      d.Status,
		"resolved_at": d.ResolvedAt,
	})
}

func (h *PaymentHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	if err := h.payments.ResetTripPaymentState(c.Request.Context(), types.ID(id)); err != nil {
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"trip_id": id, "reset": true})
}

func (h *PaymentHandler) Suspension(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	st, err := h.payments.SuspensionStatus(c.Request.Context(), types.ID(id))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}
