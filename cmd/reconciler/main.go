package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/DanielPopoola/billing-reconciler/docs"
	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/DanielPopoola/billing-reconciler/internal/application/services"
	"github.com/DanielPopoola/billing-reconciler/internal/config"
	"github.com/DanielPopoola/billing-reconciler/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/billing-reconciler/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/billing-reconciler/internal/interfaces/rest/openapi"
	"github.com/DanielPopoola/billing-reconciler/internal/provider"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/mollie"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/stripeprovider"
	"github.com/DanielPopoola/billing-reconciler/internal/provider/testprovider"
	"github.com/DanielPopoola/billing-reconciler/internal/worker"
	"golang.org/x/sync/errgroup"
)

const (
	basePath        = "/billing"
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting billing reconciler",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	registry := provider.NewRegistry(logger)
	var testProvider *testprovider.Provider
	if cfg.Providers.Test.Enabled {
		testProvider = testprovider.New(cfg.Providers.Test)
		registry.Register(testProvider)
	}
	if cfg.Providers.Stripe.Enabled {
		registry.Register(stripeprovider.New(cfg.Providers.Stripe, nil))
	}
	if cfg.Providers.Mollie.Enabled {
		client := mollie.NewRetryClient(mollie.NewHTTPClient(cfg.Providers.Mollie), cfg.Retry)
		registry.Register(mollie.New(cfg.Providers.Mollie, client))
	}
	if len(registry.Keys()) == 0 {
		logger.Warn("no payment providers enabled")
	}

	scheduler := worker.NewScheduler(cfg.Worker.MaxConcurrentJobs, logger)

	updater := services.NewStatusUpdater(store.Payments, logger)
	cascade := services.NewInvoiceCascade(store.Invoices, store.Payments, updater, logger)
	webhookService := services.NewWebhookService(registry, store.Payments, updater, cascade, logger)
	paymentService := services.NewPaymentService(registry, store, updater, cascade, logger)
	refundService := services.NewRefundService(registry, store, updater, logger)
	invoiceService := services.NewInvoiceService(store, updater, cascade, logger)
	queryService := services.NewQueryService(store)

	err = registry.InitAll(ctx, provider.Dependencies{
		Logger:     logger,
		Payments:   store.Payments,
		Reconciler: webhookService,
		Scheduler:  scheduler,
		PublicURL:  cfg.Server.PublicURL,
		Production: cfg.Primary.IsProduction(),
	})
	if err != nil {
		logger.Error("failed to initialize payment providers", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	h := handlers.NewHandlers(paymentService, refundService, invoiceService, queryService, webhookService, logger)
	h.RegisterRoutes(mux, basePath)
	registry.ConfigureAll(&provider.RegistrationContext{
		Mux:      mux,
		BasePath: basePath,
		Logger:   logger,
	})

	doc, err := openapi.Load(ctx)
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}
	validateRequests, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		logger.Error("failed to build request validator", "error", err)
		os.Exit(1)
	}

	handler := middleware.Chain(mux,
		middleware.Timeout(cfg.Server.WriteTimeout, basePath+"/webhooks/"),
		middleware.Logging(logger),
		middleware.Recovery(logger),
		validateRequests,
	)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	invoiceReconciler := worker.NewInvoiceReconciler(
		store.Payments,
		cascade,
		cfg.Worker.CascadeInterval,
		cfg.Worker.CascadeBatchSize,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "addr", server.Addr, "public_url", cfg.Server.PublicURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scheduler.Start(gctx, shutdownTimeout)
	})

	g.Go(func() error {
		invoiceReconciler.Start(gctx)
		return nil
	})

	if testProvider != nil {
		sweeper := worker.NewSessionSweeper(testProvider, cfg.Worker.SweepInterval, cfg.Worker.SessionRetention, logger)
		g.Go(func() error {
			sweeper.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		closeStore()
		os.Exit(1)
	}

	logger.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (application.Store, func(), error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return application.Store{}, nil, err
	}
	return postgres.NewStore(db), db.Close, nil
}
