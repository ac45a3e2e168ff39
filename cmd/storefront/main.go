package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/keksoko/storefront/api/controllers"
	"github.com/keksoko/storefront/api/routes"
	"github.com/keksoko/storefront/internal/cart"
	"github.com/keksoko/storefront/internal/catalog"
	checkoutsvc "github.com/keksoko/storefront/internal/checkout"
	reviewsvc "github.com/keksoko/storefront/internal/reviews"
	"github.com/keksoko/storefront/internal/upstream"
	"github.com/keksoko/storefront/pkg/config"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/keksoko/storefront/pkg/metrics"
	"github.com/keksoko/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	upstreamClient, err := upstream.New(cfg.Upstream)
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(promRegistry)

	cartProvider, err := cart.NewProvider(redisClient, cfg.Cart.StorageTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart provider", err)
		os.Exit(1)
	}

	browserRegistry, err := catalog.NewRegistry(upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog registry", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cfg.Checkout,
		upstreamClient,
		checkoutsvc.NewRedisGuard(redisClient),
		checkoutsvc.NewManager(),
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	reviewService, err := reviewsvc.NewService(upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build review service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Carts:    cartProvider,
		Browsers: browserRegistry,
		Checkout: checkoutService,
		Reviews:  reviewService,
		Readiness: []controllers.Dependency{
			{Name: "redis", Pinger: redisClient},
			{Name: "marketplace", Pinger: upstreamClient},
		},
		PromRegistry: promRegistry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	checkoutService.Shutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
