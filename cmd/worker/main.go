package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ita-digital/backoffice/internal/app"
	"github.com/ita-digital/backoffice/internal/billing"
	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/invoicing"
	jobmetrics "github.com/ita-digital/backoffice/internal/jobs"
	"github.com/ita-digital/backoffice/internal/orders"
	"github.com/ita-digital/backoffice/internal/platform/cache"
	"github.com/ita-digital/backoffice/internal/platform/db"
	"github.com/ita-digital/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	metrics := jobmetrics.NewMetrics(nil)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	clientsService := clients.NewService(clients.NewRepository(pool))
	ordersService := orders.NewService(orders.NewRepository(pool), catalogService, clientsService)

	billingCache := billing.NewCache(redisClient, cfg.FinancialCacheTTL)
	billingService := billing.NewService(billing.NewRepository(pool), ordersService, catalogService, billingCache)

	invoicingService := invoicing.NewService(invoicing.NewClient(cfg.ENotasBaseURL, cfg.ENotasAPIKey))

	mailer := jobs.NewSMTPMailer(net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)), cfg.SMTPFrom)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(logger, mailer)},
			{Type: jobs.TaskTypeOverdueScan, Handler: jobs.NewOverdueScanHandler(logger, billingService, metrics)},
			{Type: jobs.TaskTypeInvoiceIssue, Handler: jobs.NewInvoiceIssueHandler(logger, billingService, invoicingService, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
