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

	cancelBookingHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/cancel_booking"
	consumeHoldHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/consume_hold"
	createHoldHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/create_hold"
	createPayRunHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/create_pay_run"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_booking"
	getSchedulingConfigHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_scheduling_config"
	invalidateAvailabilityHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/invalidate_availability"
	listSchedulingConfigsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/list_scheduling_configs"
	rescheduleBookingHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/reschedule_booking"
	updateSchedulingConfigHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/update_scheduling_config"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/config"
	availabilityCache "github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/idempotency"
	bookingRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/config"
	holdRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/hold"
	offeringRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/offering"
	outboxRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/outbox"
	payrollRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/payroll"
	scheduleRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/schedule"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SalonBookingService/internal/service/bookings"
	configService "github.com/m04kA/SMC-SalonBookingService/internal/service/config"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/invalidation"
	consumeHoldUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/consume_hold"
	createBookingUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_booking"
	createHoldUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_hold"
	createPayRunUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_pay_run"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/tracing"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

const rateLimiterIdleTTL = 10 * time.Minute

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SMC-SalonBookingService API...")
	log.Info("Configuration loaded from config.toml")

	// Трассировка (если задан endpoint)
	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing.Endpoint, cfg.Metrics.ServiceName)
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}
	if cfg.Tracing.Endpoint != "" {
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены). nil-коллектор безопасен для всех потребителей.
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

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Redis: кэш доступности и ключи идемпотентности
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// Без Redis сервис работает: кэш и идемпотентность деградируют
		log.Warn("Redis is unavailable at %s: %v", cfg.Redis.Addr, err)
	} else {
		log.Info("Successfully connected to Redis (addr=%s)", cfg.Redis.Addr)
	}

	slotCache := availabilityCache.NewCache(redisClient, cfg.Redis.AvailabilityPrefix,
		time.Duration(cfg.Redis.AvailabilityTTL)*time.Second)
	idempotencyStore := idempotency.NewStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTL)*time.Second)
	invalidator := invalidation.NewInvalidator(slotCache,
		time.Duration(cfg.Redis.InvalidationTimeoutMs)*time.Millisecond, log)

	// Интеграции
	paymentClient := paymentgateway.NewClient(cfg.Payments.GatewayURL, cfg.Payments.SecretKey,
		time.Duration(cfg.Payments.Timeout)*time.Second, log)
	log.Info("Payment gateway client initialized (url=%s, timeout=%ds)", cfg.Payments.GatewayURL, cfg.Payments.Timeout)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)
	holdRepository := holdRepo.NewRepository(wrappedDB)
	offeringRepository := offeringRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	payrollRepository := payrollRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	staffRepository := staffRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	loader := availability.NewLoader(staffRepository, scheduleRepository, bookingRepository, log)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		staffRepository,
		outboxRepository,
		invalidator,
		txMgr,
		systemClock{},
		log,
	)
	configSvc := configService.NewService(configRepository, staffRepository, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		staffRepository,
		configRepository,
		offeringRepository,
		loader,
		slotCache,
		metricsCollector,
		log,
	)
	createHoldUseCase := createHoldUC.NewUseCase(
		holdRepository,
		offeringRepository,
		staffRepository,
		configRepository,
		loader,
		metricsCollector,
		createHoldUC.Settings{
			TTL:       cfg.Holds.TTL(),
			TravelFee: cfg.Holds.TravelFeeAmount(),
			Currency:  cfg.Holds.Currency,
		},
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(bookingRepository, txMgr, log)
	consumeHoldUseCase := consumeHoldUC.NewUseCase(
		holdRepository,
		createBookingUseCase,
		bookingRepository,
		offeringRepository,
		staffRepository,
		outboxRepository,
		invalidator,
		paymentClient,
		metricsCollector,
		txMgr,
		log,
	)
	createPayRunUseCase := createPayRunUC.NewUseCase(
		payrollRepository,
		staffRepository,
		outboxRepository,
		metricsCollector,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createHold := createHoldHandler.NewHandler(createHoldUseCase, log)
	consumeHold := consumeHoldHandler.NewHandler(consumeHoldUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	getSchedulingConfig := getSchedulingConfigHandler.NewHandler(configSvc, log)
	listSchedulingConfigs := listSchedulingConfigsHandler.NewHandler(configSvc, log)
	updateSchedulingConfig := updateSchedulingConfigHandler.NewHandler(configSvc, log)
	createPayRun := createPayRunHandler.NewHandler(createPayRunUseCase, log)
	invalidateAvailability := invalidateAvailabilityHandler.NewHandler(invalidator, log)

	// Лимит на создание холдов по IP
	holdLimiter := middleware.NewRateLimiter(cfg.Server.HoldRatePerMinute, rateLimiterIdleTTL)
	stopLimiterCh := make(chan struct{})
	go holdLimiter.RunEviction(rateLimiterIdleTTL, stopLimiterCh)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Tracing)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты сотрудника
	api.HandleFunc("/staff/{staffId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Конфигурация расписания с учетом иерархии
	api.HandleFunc("/providers/{providerId}/scheduling-config", getSchedulingConfig.Handle).Methods(http.MethodGet)

	// Создание холда: гость или пользователь, X-User-ID опционален
	api.Handle("/holds",
		holdLimiter.Limit(middleware.OptionalAuth(http.HandlerFunc(createHold.Handle)))).Methods(http.MethodPost)

	// ============================================================
	// INTERNAL ROUTES (закрыты на уровне сети)
	// ============================================================

	api.HandleFunc("/internal/availability/invalidate", invalidateAvailability.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Холды и бронирования ---
	// Погашение холда, повтор с тем же Idempotency-Key отдает первый ответ
	protected.Handle("/holds/{holdId}/consume",
		middleware.Idempotency(idempotencyStore, log)(http.HandlerFunc(consumeHold.Handle))).Methods(http.MethodPost)

	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

	// --- Управление провайдером (для менеджеров) ---
	protected.HandleFunc("/providers/{providerId}/scheduling-config", updateSchedulingConfig.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/scheduling-configs", listSchedulingConfigs.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/pay-runs", createPayRun.Handle).Methods(http.MethodPost)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopLimiterCh)
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся фоновых сбросов кэша
	invalidator.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
