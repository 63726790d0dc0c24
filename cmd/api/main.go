package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/property_booking/internal/adapter/handler"
	"github.com/srgjo27/property_booking/internal/adapter/idempotency"
	"github.com/srgjo27/property_booking/internal/adapter/notifier"
	"github.com/srgjo27/property_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/property_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/ports"
	"github.com/srgjo27/property_booking/internal/core/services"
	"github.com/srgjo27/property_booking/internal/platform/cache"
	"github.com/srgjo27/property_booking/internal/platform/config"
	"github.com/srgjo27/property_booking/internal/platform/database"
	"github.com/srgjo27/property_booking/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.HealthCheck{}

	var (
		bookingRepo  ports.BookingRepository
		propertyRepo ports.PropertyRepository
	)

	switch cfg.Storage {
	case "memory":
		store := memory.NewStore()
		demo := domain.Property{
			ID:        uuid.New(),
			Title:     "Demo Apartment",
			Location:  "Airport Residential, Accra",
			Address:   "1 Liberation Road",
			Available: true,
			CreatedAt: time.Now().UTC(),
		}
		store.PutProperty(demo)
		log.Warn("using in-memory storage, data is lost on restart", zap.Stringer("demo_property_id", demo.ID))

		bookingRepo = memory.NewBookingRepository(store)
		propertyRepo = memory.NewPropertyRepository(store)
	default:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
			MaxConns: cfg.DBMaxConns,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to db after retries", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(ctx, db, log); err != nil {
			log.Fatal("failed to migrate schema", zap.Error(err))
		}

		checks["postgres"] = pingDB(db)
		bookingRepo = postgres.NewBookingRepository(db)
		propertyRepo = postgres.NewPropertyRepository(db)
	}

	var mailer notifier.Mailer = notifier.NewLogMailer(log)
	if cfg.SMTPEnabled() {
		mailer = notifier.NewSMTPMailer(notifier.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	} else {
		log.Warn("smtp not configured, emails will only be logged")
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	close(workerDone)

	var (
		notifiers notifier.Fanout
		opts      = []services.Option{services.WithLogger(log)}
	)

	redisClient, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	switch {
	case err == nil:
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

		notifiers = append(notifiers, notifier.NewRedisQueue(redisClient, cfg.NotifyQueue, cfg.AdminEmail))
		opts = append(opts, services.WithIdempotencyStore(idempotency.NewRedisStore(redisClient)))

		worker := notifier.NewWorker(redisClient, cfg.NotifyQueue, mailer, log)
		workerDone = make(chan struct{})
		go func(done chan struct{}) {
			defer close(done)
			worker.Run(workerCtx)
		}(workerDone)
	case cfg.Storage == "memory":
		log.Warn("redis unavailable, sending emails inline without idempotency keys", zap.Error(err))
		notifiers = append(notifiers, notifier.NewDirect(mailer, cfg.AdminEmail))
	default:
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	if cfg.RabbitURL != "" {
		publisher, err := notifier.NewEventPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.Error("rabbitmq unavailable, booking events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
			log.Info("publishing booking events", zap.String("exchange", cfg.BookingExchange))
		}
	}

	availabilityService := services.NewAvailabilityService(bookingRepo)
	bookingService := services.NewBookingService(bookingRepo, propertyRepo, availabilityService, notifiers, opts...)

	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:       cfg.JWTSecret,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitBurst:  cfg.RateLimitBurst,
		AllowedOrigins:  cfg.AllowedOrigins(),
		Production:      cfg.IsProduction(),
	}, handler.NewBookingHandler(bookingService, availabilityService), checks, log)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, admin routes will reject every request")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server startup failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	bookingService.Wait()
	stopWorker()
	<-workerDone

	log.Info("server exiting")
}

func pingDB(db *sql.DB) handler.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
