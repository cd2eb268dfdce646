package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
)

// UseCase use case получения доступных слотов.
// Чистое чтение: лизы не изменяются, транзакция не открывается —
// запрос можно выполнять сколь угодно часто.
type UseCase struct {
	settingsRepo  SettingsRepository
	blockRepo     BlockRepository
	leaseRepo     LeaseRepository
	catalogClient CatalogServiceClient
	policy        domain.PolicyParams
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	settingsRepo SettingsRepository,
	blockRepo BlockRepository,
	leaseRepo LeaseRepository,
	catalogClient CatalogServiceClient,
	policy domain.PolicyParams,
	logger Logger,
) *UseCase {
	return &UseCase{
		settingsRepo:  settingsRepo,
		blockRepo:     blockRepo,
		leaseRepo:     leaseRepo,
		catalogClient: catalogClient,
		policy:        policy,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, service=%d, date=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	if isDateInPast(req.Date, now) {
		return nil, ErrInvalidDate
	}

	// 2. Провайдер и услуга из каталога
	provider, err := uc.catalogClient.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			uc.logger.Warn("GetAvailableSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}
	if !provider.IsActive {
		return nil, ErrProviderNotFound
	}

	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive || service.ProviderID != req.ProviderID {
		return nil, ErrServiceNotFound
	}

	// 3. Настройки бронирования
	settings, err := uc.settingsRepo.GetByProviderID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = domain.DefaultBookingSettings(req.ProviderID)
		} else {
			uc.logger.Error("GetAvailableSlots: failed to get settings: %v", err)
			return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
		}
	}
	if !settings.Enabled {
		uc.logger.Info("GetAvailableSlots: booking disabled for provider id=%d", req.ProviderID)
		return nil, ErrBookingDisabled
	}

	day := settings.Week.ForWeekday(req.Date.Weekday())
	if !day.Open {
		uc.logger.Info("GetAvailableSlots: provider id=%d closed on %s", req.ProviderID, req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req), nil
	}

	// 4. Блокировки и лизы дня
	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())

	blocks, err := uc.blockRepo.ListByProviderAndRange(ctx, req.ProviderID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to list blocks: %v", ErrInternal, err)
	}

	staffKey := int64(0)
	if req.StaffID != nil {
		staffKey = *req.StaffID
	}

	dayLeases, err := uc.leaseRepo.ListForDay(ctx, req.ProviderID, staffKey, dayStart.Format(domain.DateFormat))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list leases: %v", err)
		return nil, fmt.Errorf("%w: failed to list leases: %v", ErrInternal, err)
	}

	// 5. Обход сетки слотов
	capacity := domain.EffectiveCapacity(settings.DefaultCapacity, serviceCapacity(service, settings))

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

	uc.logger.Info("GetAvailableSlots: %d slots for provider=%d, service=%d, date=%s",
		len(slots), req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:       req.Date,
		ProviderID: req.ProviderID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		Slots:      fromDomainSlots(slots),
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request) *Response {
	return &Response{
		Date:       req.Date,
		ProviderID: req.ProviderID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		Slots:      []Slot{},
	}
}

// serviceCapacity извлекает вместимость услуги; без явного значения
// услуга наследует вместимость провайдера
func serviceCapacity(service *catalogClient.Service, settings *domain.BookingSettings) int {
	if service.Capacity == nil {
		return settings.DefaultCapacity
	}
	return *service.Capacity
}
