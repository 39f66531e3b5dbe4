package main

import (
	"context"
	"net/http"
	"os"

	"github.com/farmdirect/farmdirect-backend/api/routes"
	"github.com/farmdirect/farmdirect-backend/internal/admin"
	"github.com/farmdirect/farmdirect-backend/internal/auth"
	"github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/internal/otp"
	"github.com/farmdirect/farmdirect-backend/internal/products"
	"github.com/farmdirect/farmdirect-backend/internal/storage"
	"github.com/farmdirect/farmdirect-backend/internal/users"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
	"github.com/farmdirect/farmdirect-backend/pkg/migrate"
	"github.com/farmdirect/farmdirect-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
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

	registry := prometheus.NewRegistry()
	marketplace := metrics.NewMarketplace(registry)

	var limiter otp.WindowLimiter
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
		limiter = redisClient
	}

	otpService := otp.NewService(otp.Params{
		Config:  cfg.OTP,
		Limiter: limiter,
		Metrics: marketplace,
	})

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		DB:        dbClient,
		Users:     userRepo,
		OTP:       otpService,
		JWT:       cfg.JWT,
		Logger:    logg,
		ExposeOTP: cfg.FeatureFlags.ExposeOTP && cfg.App.IsDev(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	imageStore, err := storage.NewLocalStore("uploads", "/uploads")
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{
		DB:    dbClient,
		Store: imageStore,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	feePolicy, err := orders.NewFlatFeePolicy(cfg.Fees)
	if err != nil {
		logg.Error(context.Background(), "invalid fee configuration", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Store:   orders.NewClientStore(dbClient),
		Fees:    feePolicy,
		Metrics: marketplace,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Ready:    dbClient.Ping,
			Users:    userRepo,
			Auth:     authService,
			Products: productService,
			Orders:   orderService,
			Admin:    adminService,
			Metrics:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
