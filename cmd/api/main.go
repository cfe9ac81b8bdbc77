package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/armory-market/armory-backend/api/routes"
	"github.com/armory-market/armory-backend/internal/assistant"
	"github.com/armory-market/armory-backend/internal/auth"
	"github.com/armory-market/armory-backend/internal/cart"
	"github.com/armory-market/armory-backend/internal/catalog"
	"github.com/armory-market/armory-backend/internal/orders"
	"github.com/armory-market/armory-backend/internal/payments"
	"github.com/armory-market/armory-backend/internal/users"
	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db"
	"github.com/armory-market/armory-backend/pkg/logger"
	"github.com/armory-market/armory-backend/pkg/metrics"
	"github.com/armory-market/armory-backend/pkg/redis"
	"github.com/armory-market/armory-backend/pkg/toss"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.Migrate(); err != nil {
		logg.Error(ctx, "failed to migrate schema", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	if err := catalogRepo.Seed(ctx); err != nil {
		logg.Error(ctx, "failed to seed catalog", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	tossClient, err := toss.NewClient(ctx, cfg.Payments, logg)
	if err != nil {
		logg.Error(ctx, "failed to create payment gateway client", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:   catalogRepo,
		Config: cfg.Assistant,
	})
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:   redisClient,
		Catalog: catalogRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		DB:      dbClient,
		Gateway: tossClient,
		Config:  cfg.Assistant,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payments service", err)
		os.Exit(1)
	}

	historyService, err := orders.NewHistoryService(orders.HistoryServiceParams{
		Orders:  orders.NewRepository(dbClient.DB()),
		Records: payments.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(ctx, "failed to create history service", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(metricsRegistry)
	assistantMetrics := metrics.NewAssistantMetrics(metricsRegistry)

	assistantOps, err := assistant.NewOps(assistant.OpsParams{
		Catalog:   catalogService,
		Payments:  paymentsService,
		History:   historyService,
		Directory: userRepo,
		Config:    cfg.Assistant,
	})
	if err != nil {
		logg.Error(ctx, "failed to create assistant operations", err)
		os.Exit(1)
	}

	modelClient, err := assistant.NewGenkitClient(ctx, cfg.OpenAI)
	if err != nil {
		logg.Error(ctx, "failed to initialize model runtime", err)
		os.Exit(1)
	}
	toolRefs := assistant.DefineTools(modelClient.Genkit(), assistantOps)

	sessionStore := assistant.NewStore(cfg.Assistant.SessionIdleTTL, nil)
	sessionStore.StartSweeper(ctx, time.Minute)

	assistantService, err := assistant.NewService(assistant.ServiceParams{
		Store:   sessionStore,
		Ops:     assistantOps,
		Model:   modelClient,
		Tools:   toolRefs,
		Config:  cfg.Assistant,
		Logger:  logg,
		Metrics: assistantMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create assistant service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			metricsRegistry,
			authService,
			registerService,
			catalogService,
			cartService,
			userRepo,
			paymentsService,
			historyService,
			assistantService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
