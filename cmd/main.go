package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tcg-tournaments/config"
	"github.com/Dosada05/tcg-tournaments/db"
	"github.com/Dosada05/tcg-tournaments/handlers"
	"github.com/Dosada05/tcg-tournaments/live"
	"github.com/Dosada05/tcg-tournaments/repositories"
	api "github.com/Dosada05/tcg-tournaments/routes"
	"github.com/Dosada05/tcg-tournaments/services"
	"github.com/Dosada05/tcg-tournaments/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
)

// @title        TCG Tournaments API
// @version      1.0
// @description  Tournament lifecycle for trading card game stores.
// @BasePath     /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("timezone", cfg.Location.String()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("schema applied")
	}

	var results services.ResultsPublisher
	if cfg.R2Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		results = storage.NewResultsPublisher(uploader)
		logger.Info("results publishing to Cloudflare R2 enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("results publishing disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run(ctx)
	var broadcaster live.Broadcaster = hub
	if cfg.RedisAddr != "" {
		redisClient, err := live.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		relay := live.NewRedisRelay(redisClient, hub, logger)
		go relay.Run(ctx)
		broadcaster = relay
		logger.Info("live events relayed through redis", slog.String("addr", cfg.RedisAddr))
	}

	txr := repositories.NewPostgresTransactor(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	storeRepo := repositories.NewPostgresStoreRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	messageRepo := repositories.NewPostgresMessageRepository(dbConn)
	templateRepo := repositories.NewPostgresTemplateRepository(dbConn)

	events := services.NewEvents(services.NewNotifier(notificationRepo), broadcaster, logger)
	clock := services.SystemClock(cfg.Location)

	tournamentService := services.NewTournamentService(
		txr,
		tournamentRepo,
		registrationRepo,
		scheduleRepo,
		storeRepo,
		templateRepo,
		events,
		results,
		clock,
		logger,
	)
	registrationService := services.NewRegistrationService(txr, tournamentRepo, registrationRepo, storeRepo, events, clock, logger)
	scheduleService := services.NewScheduleService(txr, scheduleRepo, tournamentRepo, storeRepo, events, clock, logger)
	notificationService := services.NewNotificationService(notificationRepo)
	messageService := services.NewMessageService(tournamentRepo, registrationRepo, messageRepo, storeRepo, events, logger)
	templateService := services.NewTemplateService(templateRepo, logger)

	var scheduler gocron.Scheduler
	if cfg.RecurringAutogen {
		scheduler, err = startAutogen(cfg.Location, cfg.RecurringAutogenAt, scheduleService, logger)
		if err != nil {
			logger.Error("failed to start recurring schedule job", slog.Any("error", err))
			os.Exit(1)
		}
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Schedule:     handlers.NewScheduleHandler(scheduleService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Message:      handlers.NewMessageHandler(messageService),
		Template:     handlers.NewTemplateHandler(templateService),
		WebSocket:    handlers.NewWebSocketHandler(hub, tournamentService, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}
	cancel()
	logger.Info("application exited")
}

// startAutogen runs GenerateDue once a day at the configured local time.
func startAutogen(loc *time.Location, at time.Duration, ss services.ScheduleService, logger *slog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	hour := uint(at / time.Hour)
	minute := uint((at % time.Hour) / time.Minute)

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			n, err := ss.GenerateDue(ctx)
			if err != nil {
				logger.Error("recurring generation finished with errors", slog.Int("generated", n), slog.Any("error", err))
				return
			}
			logger.Info("recurring generation finished", slog.Int("generated", n))
		}),
		gocron.WithName("recurring-autogen"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.Start()
	logger.Info("recurring schedule job started", slog.String("at", fmt.Sprintf("%02d:%02d", hour, minute)))
	return s, nil
}
