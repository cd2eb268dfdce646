package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	leaseSvc "github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/txmanager"
)

// UseCase use case создания бронирования.
// Проверка доступности слота, захват лизов мест и запись бронирования
// выполняются в одной сериализуемой транзакции: конкурирующие запросы
// на последнее место не могут переподписать слот.
type UseCase struct {
	bookingRepo   BookingRepository
	settingsRepo  SettingsRepository
	blockRepo     BlockRepository
	leaseService  LeaseService
	catalogClient CatalogServiceClient
	notifyClient  NotifyServiceClient
	txManager     TransactionManager
	policy        domain.PolicyParams
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	settingsRepo SettingsRepository,
	blockRepo BlockRepository,
	leaseService LeaseService,
	catalogClient CatalogServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	policy domain.PolicyParams,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		settingsRepo:  settingsRepo,
		blockRepo:     blockRepo,
		leaseService:  leaseService,
		catalogClient: catalogClient,
		notifyClient:  notifyClient,
		txManager:     txManager,
		policy:        policy,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, provider=%d, service=%d, date=%s, time=%s",
		req.CustomerID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем провайдера и услугу в каталоге
	provider, err := uc.catalogClient.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			uc.logger.Warn("CreateBooking: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}
	if !provider.IsActive {
		uc.logger.Warn("CreateBooking: provider id=%d is inactive", req.ProviderID)
		return nil, ErrProviderNotFound
	}

	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive || service.ProviderID != req.ProviderID {
		uc.logger.Warn("CreateBooking: service id=%d is not bookable for provider id=%d", req.ServiceID, req.ProviderID)
		return nil, ErrServiceNotFound
	}

	// 3. Проверяем сотрудника, если указан
	if req.StaffID != nil {
		staff, err := uc.catalogClient.GetStaffMember(ctx, req.ProviderID, *req.StaffID)
		if err != nil || !staff.IsActive {
			uc.logger.Warn("CreateBooking: staff id=%d not found for provider id=%d", *req.StaffID, req.ProviderID)
			return nil, ErrStaffNotFound
		}
	}

	var result *domain.Booking
	var seatIndex int

	// 4. Доступность, лизы и запись — в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		settings, err := uc.loadSettings(txCtx, req.ProviderID)
		if err != nil {
			return err
		}
		if !settings.Enabled {
			uc.logger.Warn("CreateBooking: booking disabled for provider id=%d", req.ProviderID)
			return ErrBookingDisabled
		}

		day := settings.Week.ForWeekday(req.Date.Weekday())
		if !day.Open {
			uc.logger.Warn("CreateBooking: provider id=%d closed on %s", req.ProviderID, req.Date.Format(domain.DateFormat))
			return ErrProviderClosed
		}

		capacity := domain.EffectiveCapacity(settings.DefaultCapacity, serviceCapacity(service, settings))
		staffKey := staffKeyOf(req.StaffID)

		dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
		blocks, err := uc.blockRepo.ListByProviderAndRange(txCtx, req.ProviderID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("%w: failed to list blocks: %v", ErrInternal, err)
		}

		dayLeases, err := uc.leaseService.ListForDay(txCtx, req.ProviderID, staffKey, dayStart.Format(domain.DateFormat))
		if err != nil {
			return fmt.Errorf("%w: failed to list leases: %v", ErrInternal, err)
		}

		// Запрошенное время должно быть среди предлагаемых слотов
		slots := domain.EnumerateSlots(domain.SlotGrid{
			Date:            dayStart,
			Day:             day,
			IntervalMinutes: settings.IntervalMinutes,
			DurationMinutes: service.DurationMinutes,
			BufferBefore:    service.BufferBeforeMinutes,
			BufferAfter:     service.BufferAfterMinutes,
			Capacity:        capacity,
			Blocks:          blocks,
			Leases:          dayLeases,
			Now:             now,
			LeadMinutes:     uc.policy.SameDayLeadMinutes,
		})

		slot := findOfferedSlot(slots, req.StartTime.String())
		if slot == nil {
			uc.logger.Warn("CreateBooking: slot %s not offered for provider=%d date=%s",
				req.StartTime, req.ProviderID, req.Date.Format(domain.DateFormat))
			return ErrSlotNotAvailable
		}

		// Повторная запись на тот же день требует явного подтверждения
		count, err := uc.bookingRepo.CountActiveByCustomerAndDate(txCtx, req.ProviderID, req.CustomerID, dayStart)
		if err != nil {
			return fmt.Errorf("%w: failed to count customer bookings: %v", ErrInternal, err)
		}
		if count > 0 && !req.AllowSameDayDuplicate {
			uc.logger.Warn("CreateBooking: customer=%d already booked on %s", req.CustomerID, req.Date.Format(domain.DateFormat))
			return ErrSameDayDuplicate
		}

		booking := uc.buildBooking(req, service, slot, dayStart, now, settings.AutoConfirm)

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		acquired, err := uc.leaseService.Acquire(txCtx, created.Window(), capacity, created.ID, created.CustomerID)
		if err != nil {
			if errors.Is(err, leaseSvc.ErrNoSeatAvailable) {
				return ErrSeatExhausted
			}
			return fmt.Errorf("%w: failed to acquire leases: %v", ErrInternal, err)
		}

		created.LockIDs = acquired.LeaseIDs
		if err := uc.bookingRepo.Update(txCtx, created); err != nil {
			return fmt.Errorf("%w: failed to store lease ids: %v", ErrInternal, err)
		}

		result = created
		seatIndex = acquired.SeatIndex
		return nil
	})

	if err != nil {
		// Исчерпание ретраев сериализации — слот перехвачен конкурентами
		if errors.Is(err, txmanager.ErrSerializationConflict) {
			uc.logger.Warn("CreateBooking: serialization conflict, slot contended")
			return nil, ErrSeatExhausted
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d status=%s seat=%d", result.ID, result.Status, seatIndex)

	uc.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventBookingCreated,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
	})

	return toResponse(result, seatIndex), nil
}

// loadSettings загружает настройки провайдера; отсутствие записи равносильно
// выключенной записи (дефолтные настройки)
func (uc *UseCase) loadSettings(ctx context.Context, providerID int64) (*domain.BookingSettings, error) {
	settings, err := uc.settingsRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return domain.DefaultBookingSettings(providerID), nil
		}
		return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
	}
	return settings, nil
}

// buildBooking собирает агрегат бронирования с политиками и напоминаниями
func (uc *UseCase) buildBooking(req *Request, service *catalogClient.Service, slot *domain.AvailableSlot, dayStart, now time.Time, autoConfirm bool) *domain.Booking {
	status := domain.StatusPending
	if autoConfirm {
		status = domain.StatusConfirmed
	}

	booking := &domain.Booking{
		ProviderID:      req.ProviderID,
		StaffID:         req.StaffID,
		ServiceID:       req.ServiceID,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		BookingDate:     dayStart,
		StartAt:         slot.StartAt,
		EndAt:           slot.EndAt,
		OccupiedStartAt: slot.StartAt.Add(-time.Duration(service.BufferBeforeMinutes) * time.Minute),
		OccupiedEndAt:   slot.EndAt.Add(time.Duration(service.BufferAfterMinutes) * time.Minute),
		Status:          status,
		ServiceName:     service.Name,
		ServicePrice:    service.Price,
		ReferralStatus:  domain.ReferralNone,
		Notes:           req.Notes,
	}

	if req.ReferralPostID != nil && service.ReferralPercent != nil {
		percent, amount := uc.policy.ReferralCommission(service.Price, *service.ReferralPercent)
		if amount > 0 {
			booking.ReferralPostID = req.ReferralPostID
			booking.ReferralCreatorID = req.ReferralCreatorID
			booking.ReferralPercent = percent
			booking.ReferralAmount = amount
			booking.ReferralStatus = domain.ReferralPending
		}
	}

	booking.RemindAt24h, booking.RemindAt2h = domain.ReminderTimes(slot.StartAt, now)

	return booking
}

// serviceCapacity извлекает вместимость услуги; без явного значения
// услуга наследует вместимость провайдера
func serviceCapacity(service *catalogClient.Service, settings *domain.BookingSettings) int {
	if service.Capacity == nil {
		return settings.DefaultCapacity
	}
	return *service.Capacity
}

func staffKeyOf(staffID *int64) int64 {
	if staffID == nil {
		return 0
	}
	return *staffID
}

func toResponse(b *domain.Booking, seatIndex int) *Response {
	return &Response{
		ID:              b.ID,
		ProviderID:      b.ProviderID,
		StaffID:         b.StaffID,
		ServiceID:       b.ServiceID,
		CustomerID:      b.CustomerID,
		BookingDate:     b.BookingDate,
		StartAt:         b.StartAt,
		EndAt:           b.EndAt,
		Status:          string(b.Status),
		SeatIndex:       seatIndex,
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		ReferralPercent: b.ReferralPercent,
		ReferralAmount:  b.ReferralAmount,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
