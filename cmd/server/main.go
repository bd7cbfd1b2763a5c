package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/config"
	"github.com/mamadbah2/bubbel/internal/repository/mongodb"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
	"github.com/mamadbah2/bubbel/internal/scheduler"
	"github.com/mamadbah2/bubbel/internal/server/handlers"
	"github.com/mamadbah2/bubbel/internal/server/router"
	"github.com/mamadbah2/bubbel/internal/service/loader"
	recordsvc "github.com/mamadbah2/bubbel/internal/service/records"
	reportingsvc "github.com/mamadbah2/bubbel/internal/service/reporting"
	"github.com/mamadbah2/bubbel/internal/service/timer"
	whatsappclient "github.com/mamadbah2/bubbel/pkg/clients/whatsapp"
	"github.com/mamadbah2/bubbel/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.NewWithOptions(logger.Options{
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// A missing store is not fatal: the dashboard shows empty tables with a warning.
	var store sheets.Repository
	sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
	if err != nil {
		baseLogger.Warn("spreadsheet store disabled", zap.Error(err))
	} else {
		store = sheetsRepo
	}

	loc := cfg.Tracker.Location()
	dataLoader := loader.NewLoader(store, loc, cfg.Tracker.CacheTTL, logger.Named(baseLogger, "svc.loader"))
	recordSvc := recordsvc.NewService(store, dataLoader, cfg.Tracker.DiaperProduct, logger.Named(baseLogger, "svc.records"))
	reportingSvc := reportingsvc.NewService(dataLoader, logger.Named(baseLogger, "svc.reporting"))
	timers := timer.NewRegistry(recordSvc, logger.Named(baseLogger, "svc.timer"))

	var archive mongodb.Repository
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Error("report archive disabled", zap.Error(err))
		} else {
			archive = mongoRepo
			defer func() {
				if err := mongoRepo.Close(context.Background()); err != nil {
					baseLogger.Error("failed to close mongodb connection", zap.Error(err))
				}
			}()
		}
	}

	var notifier whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		notifier = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp alerts enabled")
	}

	engine := router.New(router.Handlers{
		Records:   handlers.NewRecordHandler(recordSvc, reportingSvc, loc, logger.Named(baseLogger, "handlers.records")),
		Inventory: handlers.NewInventoryHandler(recordSvc, reportingSvc, logger.Named(baseLogger, "handlers.inventory")),
		Timers:    handlers.NewTimerHandler(timers, logger.Named(baseLogger, "handlers.timers")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, loc, logger.Named(baseLogger, "handlers.dashboard")),
		Reports:   handlers.NewReportHandler(archive, loc, logger.Named(baseLogger, "handlers.reports")),
	}, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, archive, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
