// README: Entry point; loads config, wires module services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"viax/internal/config"
	httptransport "viax/internal/http"
	"viax/internal/infra"
	"viax/internal/logger"
	"viax/internal/maps"
	"viax/internal/modules/payment"
	"viax/internal/modules/settlement"
	"viax/internal/modules/tariff"
	"viax/internal/modules/tracking"
	"viax/internal/modules/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init("viax-api", os.Getenv("VIAX_ENV") == "development"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	// Without an API key trip requests fail with 503; everything else works.
	var estimator trip.RouteEstimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		estimator = routeSvc
	} else {
		logger.Warn("VIAX_MAPS_API_KEY not set; trip estimates disabled")
	}

	tariffStore := tariff.NewStore(dbPool)
	tariffSvc := tariff.NewService(tariffStore, redisClient, cfg.Cache.TariffTTL)

	trackingStore := tracking.NewStore(dbPool, redisClient, cfg.Cache.SampleTTL)
	trackingSvc := tracking.NewService(trackingStore)

	tripStore := trip.NewStore(dbPool, cfg.Currency)
	tripSvc := trip.NewService(tripStore, estimator, tariffSvc, cfg.Currency)

	settlementStore := settlement.NewStore(dbPool)
	settlementSvc := settlement.NewService(dbPool, settlementStore, tripStore, tariffSvc, trackingSvc, cfg.Currency)

	paymentStore := payment.NewStore(dbPool)
	paymentSvc := payment.NewService(dbPool, paymentStore, redisClient, cfg.Cache.SuspensionTTL)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Trips:       tripSvc,
		Tracking:    trackingSvc,
		Settlements: settlementSvc,
		Payments:    paymentSvc,
		Tariffs:     tariffSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server", zap.Error(err))
	}
}
