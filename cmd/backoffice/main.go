package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ita-digital/backoffice/internal/app"
	"github.com/ita-digital/backoffice/internal/auth"
	"github.com/ita-digital/backoffice/internal/billing"
	"github.com/ita-digital/backoffice/internal/blog"
	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/geo"
	"github.com/ita-digital/backoffice/internal/invoicing"
	"github.com/ita-digital/backoffice/internal/observability"
	"github.com/ita-digital/backoffice/internal/orders"
	"github.com/ita-digital/backoffice/internal/platform/cache"
	"github.com/ita-digital/backoffice/internal/platform/db"
	"github.com/ita-digital/backoffice/internal/shared"
	"github.com/ita-digital/backoffice/internal/support"
	"github.com/ita-digital/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "ita_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, auditLogger)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, catalogService, clientsService)
	ordersHandler := orders.NewHandler(logger, ordersService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	billingRepo := billing.NewRepository(dbpool)
	billingCache := billing.NewCache(redisClient, cfg.FinancialCacheTTL)
	billingService := billing.NewService(billingRepo, ordersService, catalogService, billingCache)
	billingHandler := billing.NewHandler(logger, billingService, jobsClient)

	enotasClient := invoicing.NewClient(cfg.ENotasBaseURL, cfg.ENotasAPIKey)
	invoicingService := invoicing.NewService(enotasClient)
	invoicingHandler := invoicing.NewHandler(logger, invoicingService, metrics)

	geoClient := geo.NewClient(logger, cfg.IBGEBaseURL, redisClient, cfg.GeoCacheTTL)
	geoHandler := geo.NewHandler(logger, geoClient)

	blogRepo := blog.NewRepository(dbpool)
	blogService := blog.NewService(blogRepo)
	blogHandler := blog.NewHandler(logger, blogService)

	supportRepo := support.NewRepository(dbpool)
	supportService := support.NewService(supportRepo).WithNotifications(clientsService, jobsClient, logger)
	supportHandler := support.NewHandler(logger, supportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		ClientsHandler:   clientsHandler,
		OrdersHandler:    ordersHandler,
		BillingHandler:   billingHandler,
		InvoicingHandler: invoicingHandler,
		GeoHandler:       geoHandler,
		BlogHandler:      blogHandler,
		SupportHandler:   supportHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
