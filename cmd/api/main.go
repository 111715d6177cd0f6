package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nurserysera/storefront-backend/api/routes"
	"github.com/nurserysera/storefront-backend/internal/fulfillment"
	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/internal/orders"
	"github.com/nurserysera/storefront-backend/internal/products"
	"github.com/nurserysera/storefront-backend/internal/reports"
	"github.com/nurserysera/storefront-backend/pkg/brevo"
	"github.com/nurserysera/storefront-backend/pkg/config"
	"github.com/nurserysera/storefront-backend/pkg/db"
	"github.com/nurserysera/storefront-backend/pkg/logger"
	"github.com/nurserysera/storefront-backend/pkg/metrics"
	"github.com/nurserysera/storefront-backend/pkg/migrate"
	"github.com/nurserysera/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var reportCache redis.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		reportCache = redisClient
	} else {
		logg.Info(context.Background(), "redis not configured, report caching disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	notifyMetrics := metrics.NewNotifyMetrics(registry)

	orderRepo := orders.NewRepository(dbClient.DB())

	var dispatcher notify.Service
	if cfg.Mail.Enabled() {
		sender, err := brevo.NewClient(cfg.Mail, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mail client", err)
			os.Exit(1)
		}
		dispatcher, err = notify.NewService(
			notify.NewLedger(dbClient.DB()),
			orderRepo,
			sender,
			logg,
			notifyMetrics,
			cfg.Notify.ErrorTruncateLen,
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create notification service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "mail api key not configured, notifications disabled")
	}

	orderService, err := orders.NewService(dbClient, orderRepo, dispatcher, logg, cfg.Shipping.DefaultCost)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(dbClient, fulfillment.NewRepository(dbClient.DB()), dispatcher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()), reportCache, cfg.Redis.ReportTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Products:    productService,
			Orders:      orderService,
			Fulfillment: fulfillmentService,
			Notify:      dispatcher,
			Reports:     reportService,
			Metrics:     registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
