// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viax/internal/http/handlers"
	"viax/internal/http/middleware"
	"viax/internal/modules/payment"
	"viax/internal/modules/settlement"
	"viax/internal/modules/tariff"
	"viax/internal/modules/tracking"
	"viax/internal/modules/trip"
)

type RouterDeps struct {
	Trips       *trip.Service
	Tracking    *tracking.Service
	Settlements *settlement.Service
	Payments    *payment.Service
	Tariffs     *tariff.Service
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	tripHandler := handlers.NewTripHandler(deps.Trips)
	r.POST("/api/trips", tripHandler.Create)
	r.GET("/api/trips/:id", tripHandler.Get)
	r.POST("/api/trips/:id/driver", tripHandler.AssignDriver)

	trackingHandler := handlers.NewTrackingHandler(deps.Tracking)
	r.POST("/api/trips/:id/tracking", trackingHandler.Record)
	r.GET("/api/trips/:id/tracking/latest", trackingHandler.Latest)

	settlementHandler := handlers.NewSettlementHandler(deps.Settlements)
	r.POST("/api/trips/:id/finalize", settlementHandler.Finalize)
	r.GET("/api/trips/:id/settlement", settlementHandler.Get)

	paymentHandler := handlers.NewPaymentHandler(deps.Payments)
	r.POST("/api/trips/:id/payment/client", paymentHandler.ConfirmClient)
	r.POST("/api/trips/:id/payment/driver", paymentHandler.ConfirmDriver)
	r.POST("/api/trips/:id/payment/resolve", paymentHandler.Resolve)
	r.POST("/api/trips/:id/payment/reset", paymentHandler.Reset)
	r.GET("/api/users/:id/suspension", paymentHandler.Suspension)

	tariffHandler := handlers.NewTariffHandler(deps.Tariffs)
	r.GET("/api/tariffs", tariffHandler.List)
	r.PUT("/api/tariffs", tariffHandler.Upsert)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
