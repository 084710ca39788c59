package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	cancelReservationHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/create_reservation"
	decideReservationHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/decide_reservation"
	getAvailabilityHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/get_availability"
	getReservationHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/get_reservation"
	getUserReservationsHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/get_user_reservations"
	getVenueReservationsHandler "github.com/m04kA/SMC-VenueBooking/internal/api/handlers/get_venue_reservations"
	"github.com/m04kA/SMC-VenueBooking/internal/api/middleware"
	"github.com/m04kA/SMC-VenueBooking/internal/config"
	availabilityCache "github.com/m04kA/SMC-VenueBooking/internal/infra/cache/availability"
	"github.com/m04kA/SMC-VenueBooking/internal/infra/events"
	reservationRepo "github.com/m04kA/SMC-VenueBooking/internal/infra/storage/reservation"
	venueCatalogClient "github.com/m04kA/SMC-VenueBooking/internal/integrations/venuecatalog"
	"github.com/m04kA/SMC-VenueBooking/internal/service/availability"
	reservationsService "github.com/m04kA/SMC-VenueBooking/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-VenueBooking/internal/usecase/create_reservation"
	getAvailabilityUC "github.com/m04kA/SMC-VenueBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-VenueBooking/migrations"
	"github.com/m04kA/SMC-VenueBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBooking/pkg/logger"
	"github.com/m04kA/SMC-VenueBooking/pkg/metrics"
	"github.com/m04kA/SMC-VenueBooking/pkg/txmanager"
)

// availabilityStore кэш занятости: чтение в use case, сброс в сервисе
type availabilityStore interface {
	Get(ctx context.Context, venueID int64, rangeKey string, dst any) (int64, bool, error)
	Set(ctx context.Context, venueID, version int64, rangeKey string, value any) error
	Invalidate(ctx context.Context, venueID int64) error
}

// eventPublisher публикатор событий жизненного цикла
type eventPublisher interface {
	createReservationUC.EventPublisher
	Close() error
}

func main() {
	configPath := pflag.StringP("config", "c", "config.toml", "path to the TOML config file")
	pflag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-VenueBooking...")
	log.Info("Configuration loaded from %s", *configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone: %v", err)
	}

	// Инициализируем метрики (если включены); nil-коллектор безопасен
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(startupCtx, db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)
	checker := availability.NewChecker(reservationRepository)

	// Инициализируем интеграционных клиентов
	venueClient := venueCatalogClient.NewClient(
		cfg.VenueCatalog.URL,
		time.Duration(cfg.VenueCatalog.Timeout)*time.Second,
		log,
	)
	log.Info("Venue catalog client initialized (url=%s, timeout=%ds)", cfg.VenueCatalog.URL, cfg.VenueCatalog.Timeout)

	// Кэш занятости
	var cache availabilityStore = availabilityCache.Nop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(startupCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, availability cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			cache = availabilityCache.NewCache(rdb, cfg.Redis.Prefix, time.Duration(cfg.Redis.TTL)*time.Second)
			log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Публикация событий
	var publisher eventPublisher = events.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
		log.Info("Lifecycle events are published to exchange %s", cfg.RabbitMQ.Exchange)
	}
	defer publisher.Close()

	// Инициализируем сервисы и use cases
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		checker,
		venueClient,
		txMgr,
		publisher,
		cache,
		metricsCollector,
		log,
	)

	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		checker,
		venueClient,
		txMgr,
		publisher,
		metricsCollector,
		log,
		createReservationUC.Options{
			AdvanceBookingDays:   cfg.Booking.AdvanceBookingDays,
			PendingBlocksPending: cfg.Booking.PendingBlocksPending,
			Location:             location,
		},
	)

	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		reservationRepository,
		venueClient,
		cache,
		metricsCollector,
		log,
		getAvailabilityUC.Options{MaxQueryDays: cfg.Booking.MaxQueryDays},
	)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	decideReservation := decideReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getVenueReservations := getVenueReservationsHandler.NewHandler(reservationSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Занятость площадки по датам
	api.HandleFunc("/venues/{venueId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Менеджеры площадок ---
	protected.HandleFunc("/reservations/{reservationId}/decision", decideReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/venues/{venueId}/reservations", getVenueReservations.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
