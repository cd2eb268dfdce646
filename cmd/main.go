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

	bookingBlocksHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/booking_blocks"
	cancelBookingHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/cancel_booking"
	checkInHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/check_in"
	createBookingHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/create_booking"
	finishBookingHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/finish_booking"
	getAvailableSlotsHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/get_booking"
	getProviderBookingsHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/get_provider_bookings"
	getProviderSettingsHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/get_provider_settings"
	getUserBookingsHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/get_user_bookings"
	proposeTimeHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/propose_time"
	requestRescheduleHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/request_reschedule"
	respondProposalHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/respond_proposal"
	respondRescheduleHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/respond_reschedule"
	setBookingStatusHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/set_booking_status"
	settlementHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/settlement"
	updateProviderSettingsHandler "github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers/update_provider_settings"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	"github.com/lumeaapp/LMA-BookingEngine/internal/config"
	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	blockRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/block"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	leaseRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/lease"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogServiceClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	notifyServiceClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/reminder"
	blocksService "github.com/lumeaapp/LMA-BookingEngine/internal/service/blocks"
	bookingsService "github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings"
	leasesService "github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
	settingsService "github.com/lumeaapp/LMA-BookingEngine/internal/service/settings"
	cancelBookingUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/cancel_booking"
	createBookingUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/get_available_slots"
	proposeTimeUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/propose_time"
	requestRescheduleUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/request_reschedule"
	respondProposalUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/respond_proposal"
	respondRescheduleUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/respond_reschedule"
	setBookingStatusUC "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/set_booking_status"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/dbmetrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/logger"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/metrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/simpletxmanager"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/txmanager"
)

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

	log.Info("Starting LMA-BookingEngine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Параметры бизнес-политик из конфигурации
	policy := domain.PolicyParams{
		CancellationFreeHours:  cfg.Policy.CancellationFreeHours,
		CancellationFeePercent: cfg.Policy.CancellationFeePercent,
		ReferralMaxPercent:     cfg.Policy.ReferralMaxPercent,
		NoShowGraceMinutes:     cfg.Policy.NoShowGraceMinutes,
		MaxCustomerReschedules: cfg.Policy.MaxCustomerReschedules,
		SameDayLeadMinutes:     cfg.Policy.SameDayLeadMinutes,
		CheckInCodeTTLMinutes:  cfg.Policy.CheckInCodeTTLMinutes,
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		leaseRepository    *leaseRepo.Repository
		settingsRepository *settingsRepo.Repository
		blockRepository    *blockRepo.Repository
	)

	// Интерфейс transaction manager (общий для сервисов и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		leaseRepository = leaseRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		blockRepository = blockRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManagerWithMetrics(wrappedDB, metricsCollector)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		leaseRepository = leaseRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		blockRepository = blockRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	leaseSvc := leasesService.NewService(leaseRepository, log)
	settingsSvc := settingsService.NewService(settingsRepository, catalogClient, log)
	blocksSvc := blocksService.NewService(blockRepository, catalogClient, log)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		policy,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		blockRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		policy,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		settingsRepository,
		blockRepository,
		leaseRepository,
		catalogClient,
		policy,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		leaseSvc,
		notifyClient,
		txMgr,
		&cancelBookingUC.RealTimeProvider{},
		policy,
		log,
	)
	setBookingStatusUseCase := setBookingStatusUC.NewUseCase(
		bookingRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		log,
	)
	proposeTimeUseCase := proposeTimeUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		blockRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		policy,
		log,
	)
	respondProposalUseCase := respondProposalUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		log,
	)
	requestRescheduleUseCase := requestRescheduleUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		blockRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		policy,
		log,
	)
	respondRescheduleUseCase := respondRescheduleUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		leaseSvc,
		catalogClient,
		notifyClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	setBookingStatus := setBookingStatusHandler.NewHandler(setBookingStatusUseCase, log)
	proposeTime := proposeTimeHandler.NewHandler(proposeTimeUseCase, log)
	respondProposal := respondProposalHandler.NewHandler(respondProposalUseCase, log)
	requestReschedule := requestRescheduleHandler.NewHandler(requestRescheduleUseCase, log)
	respondReschedule := respondRescheduleHandler.NewHandler(respondRescheduleUseCase, log)
	checkIn := checkInHandler.NewHandler(bookingSvc, log)
	finishBooking := finishBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	getProviderSettings := getProviderSettingsHandler.NewHandler(settingsSvc, log)
	updateProviderSettings := updateProviderSettingsHandler.NewHandler(settingsSvc, log)
	bookingBlocks := bookingBlocksHandler.NewHandler(blocksSvc, log)
	settlement := settlementHandler.NewHandler(bookingSvc, log)

	// Фоновый диспетчер напоминаний
	var reminderDispatcher *reminder.Dispatcher
	if cfg.Reminders.Enabled {
		reminderDispatcher = reminder.NewDispatcher(bookingRepository, notifyClient, log)
		if err := reminderDispatcher.Start(cfg.Reminders.Spec); err != nil {
			log.Fatal("Failed to start reminder dispatcher: %v", err)
		}
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Внутренний маршрут для платёжного сервиса (без пользовательской аутентификации)
	r.HandleFunc("/internal/bookings/{bookingId}/settlement", settlement.Handle).Methods(http.MethodPatch)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Получение доступных слотов для бронирования
	api.HandleFunc("/providers/{providerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Получение настроек бронирования провайдера
	api.HandleFunc("/providers/{providerId}/settings",
		getProviderSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования клиентом
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Решение провайдера по заявке: approve / reject
	protected.HandleFunc("/bookings/{bookingId}/status", setBookingStatus.Handle).Methods(http.MethodPatch)

	// Встречное предложение времени от провайдера
	protected.HandleFunc("/bookings/{bookingId}/propose-time", proposeTime.Handle).Methods(http.MethodPost)

	// Ответ клиента на встречное предложение
	protected.HandleFunc("/bookings/{bookingId}/proposal/respond", respondProposal.Handle).Methods(http.MethodPost)

	// Запрос клиента на перенос в тот же день
	protected.HandleFunc("/bookings/{bookingId}/reschedule", requestReschedule.Handle).Methods(http.MethodPost)

	// Ответ провайдера на запрос переноса
	protected.HandleFunc("/bookings/{bookingId}/reschedule/respond", respondReschedule.Handle).Methods(http.MethodPost)

	// --- Check-in ---
	protected.HandleFunc("/bookings/{bookingId}/check-in/code", checkIn.HandleGenerate).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/check-in/confirm", checkIn.HandleConfirm).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/check-in/reject", checkIn.HandleReject).Methods(http.MethodPost)

	// --- Завершение визита ---
	protected.HandleFunc("/bookings/{bookingId}/complete", finishBooking.HandleComplete).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/no-show", finishBooking.HandleNoShow).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление провайдером (для владельцев) ---
	// Список бронирований провайдера
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// Обновление настроек бронирования
	protected.HandleFunc("/providers/{providerId}/settings", updateProviderSettings.Handle).Methods(http.MethodPut)

	// Блокировки расписания
	protected.HandleFunc("/providers/{providerId}/blocks", bookingBlocks.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/blocks", bookingBlocks.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/blocks/{blockId}", bookingBlocks.HandleDelete).Methods(http.MethodDelete)

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

	// Останавливаем диспетчер напоминаний
	if reminderDispatcher != nil {
		reminderDispatcher.Stop()
	}

	// Останавливаем сбор метрик connection pool
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
