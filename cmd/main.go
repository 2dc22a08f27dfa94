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

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	countUnreadHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/count_unread_bookings"
	createDepartmentHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/create_department"
	createSlotHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/delete_slot"
	getBookingHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/get_booking"
	getMyBookingsHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/get_my_bookings"
	listBookingsHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/list_bookings"
	listDepartmentsHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/list_departments"
	listSlotsHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/list_slots"
	markReadHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/mark_booking_read"
	renameDepartmentHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/rename_department"
	reserveSlotHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/reserve_slot"
	setStatusHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/set_booking_status"
	updateCapacityHandler "github.com/m04kA/HospitalBookingService/internal/api/handlers/update_slot_capacity"
	"github.com/m04kA/HospitalBookingService/internal/api/middleware"
	"github.com/m04kA/HospitalBookingService/internal/config"
	"github.com/m04kA/HospitalBookingService/internal/domain"
	bookingRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/booking"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	referenceRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/reference"
	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
	"github.com/m04kA/HospitalBookingService/internal/jobs/capacity"
	bookingsService "github.com/m04kA/HospitalBookingService/internal/service/bookings"
	departmentsService "github.com/m04kA/HospitalBookingService/internal/service/departments"
	slotsService "github.com/m04kA/HospitalBookingService/internal/service/slots"
	deleteSlotUC "github.com/m04kA/HospitalBookingService/internal/usecase/delete_slot"
	reserveSlotUC "github.com/m04kA/HospitalBookingService/internal/usecase/reserve_slot"
	"github.com/m04kA/HospitalBookingService/pkg/dbmetrics"
	"github.com/m04kA/HospitalBookingService/pkg/logger"
	"github.com/m04kA/HospitalBookingService/pkg/metrics"
	"github.com/m04kA/HospitalBookingService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("HBS_CONFIG"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting HospitalBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены); nil коллектор везде означает "выключено"
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

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	// Проверяем соединение
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = wrappedDB.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithLockTimeout(time.Duration(cfg.Database.LockTimeoutMs)*time.Millisecond),
	)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	slotRepository := slotRepo.NewRepository(wrappedDB)
	departmentRepository := departmentRepo.NewRepository(wrappedDB)
	referenceRepository := referenceRepo.NewRepository(wrappedDB)

	timeProvider := &reserveSlotUC.RealTimeProvider{Location: location}

	// Инициализируем use cases
	reserveSlotUseCase := reserveSlotUC.NewUseCase(
		departmentRepository,
		slotRepository,
		bookingRepository,
		referenceRepository,
		txMgr,
		domain.ReferenceScheme{
			Prefix: cfg.Booking.ReferencePrefix,
			Period: cfg.Booking.ReferencePeriod,
			Width:  cfg.Booking.ReferenceWidth,
		},
		timeProvider,
		metricsCollector,
		log,
	)
	deleteSlotUseCase := deleteSlotUC.NewUseCase(slotRepository, bookingRepository, txMgr, log)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	departmentSvc := departmentsService.NewService(departmentRepository, log)
	slotSvc := slotsService.NewService(slotRepository, departmentRepository, txMgr, timeProvider, log)

	// Инициализируем handlers
	reserveSlot := reserveSlotHandler.NewHandler(reserveSlotUseCase, log)
	deleteSlot := deleteSlotHandler.NewHandler(deleteSlotUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getMyBookings := getMyBookingsHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	setStatus := setStatusHandler.NewHandler(bookingSvc, log)
	markRead := markReadHandler.NewHandler(bookingSvc, log)
	countUnread := countUnreadHandler.NewHandler(bookingSvc, log)
	listDepartments := listDepartmentsHandler.NewHandler(departmentSvc, log)
	createDepartment := createDepartmentHandler.NewHandler(departmentSvc, log)
	renameDepartment := renameDepartmentHandler.NewHandler(departmentSvc, log)
	listSlots := listSlotsHandler.NewHandler(slotSvc, log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	updateCapacity := updateCapacityHandler.NewHandler(slotSvc, log)

	authenticator := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.CookieName, log)

	// Ограничение частоты применяется только к созданию бронирований
	var reserveHandler http.Handler = http.HandlerFunc(reserveSlot.Handle)
	if cfg.RateLimit.Enabled {
		reserveHandler = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Limit(reserveHandler)
		log.Info("Rate limit for reservations: %.2f rps, burst %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/departments", listDepartments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/departments/{departmentId:[0-9]+}/slots", listSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// OPTIONAL AUTH (анонимный пациент или пользователь с токеном)
	// ============================================================

	optional := api.PathPrefix("").Subrouter()
	optional.Use(authenticator.OptionalAuth)

	optional.Handle("/bookings", reserveHandler).Methods(http.MethodPost)
	optional.HandleFunc("/bookings/{referenceNumber}", getBooking.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют токен)
	// ============================================================

	protected := api.PathPrefix("/me").Subrouter()
	protected.Use(authenticator.Auth)

	protected.HandleFunc("/bookings", getMyBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticator.Auth, middleware.RequireAdmin)

	// --- Отделения ---
	admin.HandleFunc("/departments", createDepartment.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/departments/{departmentId:[0-9]+}", renameDepartment.Handle).Methods(http.MethodPut)

	// --- Слоты ---
	admin.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/slots/{slotId:[0-9]+}/capacity", updateCapacity.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/slots/{slotId:[0-9]+}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/unread-count", countUnread.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{referenceNumber}/status", setStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{referenceNumber}/read", markRead.Handle).Methods(http.MethodPatch)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	}).Handler(r)

	// Фоновый снимок остатка мест
	var scheduler gocron.Scheduler
	if cfg.Jobs.CapacitySnapshotEnabled && cfg.Metrics.Enabled {
		job := capacity.NewJob(slotRepository, metricsCollector, timeProvider, log)
		scheduler, err = capacity.Start(job, time.Duration(cfg.Jobs.CapacitySnapshotInterval)*time.Second, location)
		if err != nil {
			log.Fatal("Failed to start capacity snapshot job: %v", err)
		}
		log.Info("Capacity snapshot job started (interval=%ds)", cfg.Jobs.CapacitySnapshotInterval)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
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

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Error("Failed to stop scheduler: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

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
