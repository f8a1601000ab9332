package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"dairyherd/internal/config"
	"dairyherd/internal/repository/mongodb"
	"dairyherd/internal/scheduler"
	"dairyherd/internal/server/handlers"
	"dairyherd/internal/server/router"
	authsvc "dairyherd/internal/service/auth"
	breedingsvc "dairyherd/internal/service/breeding"
	feedingsvc "dairyherd/internal/service/feeding"
	healthsvc "dairyherd/internal/service/health"
	notificationsvc "dairyherd/internal/service/notifications"
	organizationsvc "dairyherd/internal/service/organizations"
	registrysvc "dairyherd/internal/service/registry"
	remindersvc "dairyherd/internal/service/reminders"
	"dairyherd/pkg/clients/fcm"
	"dairyherd/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	cattleRepo := mongodb.NewCattleRepository(store)
	userRepo := mongodb.NewUserRepository(store)
	orgRepo := mongodb.NewOrganizationRepository(store)
	breedingRepo := mongodb.NewBreedingRepository(store)
	feedingRepo := mongodb.NewFeedingRepository(store)
	healthRepo := mongodb.NewHealthRepository(store)
	notificationRepo := mongodb.NewNotificationRepository(store)

	// Initialize push client
	var pusher fcm.Client
	if cfg.FCM.ServerKey != "" {
		pusher = fcm.NewClient(cfg.FCM)
		baseLogger.Info("fcm push client enabled")
	} else {
		baseLogger.Warn("fcm server key missing, push delivery disabled")
	}

	organizationSvc := organizationsvc.NewService(orgRepo, baseLogger.Named("svc.organizations"))
	authSvc := authsvc.NewService(userRepo, organizationSvc, cfg.Auth, baseLogger.Named("svc.auth"))
	registrySvc := registrysvc.NewService(cattleRepo, userRepo, baseLogger.Named("svc.registry"))
	breedingSvc := breedingsvc.NewService(breedingRepo, registrySvc, store, baseLogger.Named("svc.breeding"))
	feedingSvc := feedingsvc.NewService(feedingRepo, registrySvc, baseLogger.Named("svc.feeding"))
	healthSvc := healthsvc.NewService(healthRepo, registrySvc, baseLogger.Named("svc.health"))
	notificationSvc := notificationsvc.NewService(notificationRepo, userRepo, pusher, baseLogger.Named("svc.notifications"))
	reminderSvc := remindersvc.NewService(breedingRepo, registrySvc, notificationSvc, baseLogger.Named("svc.reminders"))

	engine := router.New(router.Handlers{
		Auth:          handlers.NewAuthHandler(authSvc, notificationSvc, baseLogger.Named("handlers.auth")),
		Cattle:        handlers.NewCattleHandler(registrySvc, baseLogger.Named("handlers.cattle")),
		Breeding:      handlers.NewBreedingHandler(breedingSvc, baseLogger.Named("handlers.breeding")),
		Feeding:       handlers.NewFeedingHandler(feedingSvc, baseLogger.Named("handlers.feeding")),
		Health:        handlers.NewHealthHandler(healthSvc, baseLogger.Named("handlers.health")),
		Notifications: handlers.NewNotificationHandler(notificationSvc, baseLogger.Named("handlers.notifications")),
		Organizations: handlers.NewOrganizationHandler(organizationSvc, baseLogger.Named("handlers.organizations")),
	}, authSvc, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(cfg.Scheduler, reminderSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
