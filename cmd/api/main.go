package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/medbook/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/lock"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		zlog.Fatal("initializing tracer", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zlog.Fatal("connecting to database", zap.Error(err))
	}
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("running migrations", zap.Error(err))
	}

	collector := metrics.NewCollector("medbook")

	apptRepo := postgres.NewAppointmentRepository(db)
	windowRepo := postgres.NewScheduleRepository(db)

	notifier := service.NewAsyncNotifier(service.NewLogSink(zlog), cfg.Notify.BufferSize, collector, zlog)

	availability := service.NewAvailabilityService(apptRepo, windowRepo, cfg.Scheduling)
	scheduling := service.NewSchedulingService(
		apptRepo, availability, lock.NewKeyed(), notifier, collector, zlog, cfg.Scheduling,
	)
	schedules := service.NewScheduleService(windowRepo, apptRepo, zlog)

	router := v1.SetupRouter(v1.RouterDeps{
		Appointments: v1.NewAppointmentHandler(scheduling),
		Schedules:    v1.NewScheduleHandler(schedules),
		JWTManager:   auth.NewJWTManager(cfg.JWT),
		Metrics:      collector,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduling.RunReminders(ctx)

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}

	notifier.Shutdown()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error("tracer shutdown", zap.Error(err))
	}

	zlog.Info("server stopped")
}
