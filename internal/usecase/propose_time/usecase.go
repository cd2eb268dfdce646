package propose_time

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

// UseCase use case предложения нового времени провайдером.
// Лизы при предложении не трогаются: новое окно захватывается только
// когда клиент принимает предложение. Доступность целевого дня
// проверяется с исключением собственных лизов бронирования, поэтому
// сдвиг внутри своего же окна возможен.
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

// Execute выполняет use case предложения времени
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ProposeTime: booking=%d by user=%d date=%s time=%s",
		req.BookingID, req.UserID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("ProposeTime: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	var result *domain.Booking

	// 2. Проверка статуса и доступности — в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if err := uc.checkOwnerAccess(txCtx, booking.ProviderID, req.UserID); err != nil {
			return err
		}

		// Неоплаченные бронирования невидимы для провайдера
		if !booking.PaymentSettled {
			return ErrBookingNotFound
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventProposeTime, domain.ActorProvider)
		if err != nil {
			uc.logger.Warn("ProposeTime: rejected for booking=%d status=%s", req.BookingID, booking.Status)
			return ErrInvalidTransition
		}

		service, err := uc.catalogClient.GetService(txCtx, booking.ServiceID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		slot, err := uc.findProposedSlot(txCtx, booking, service, req, now)
		if err != nil {
			return err
		}

		proposedBy := domain.ProposalByCompany
		occupiedStart := slot.StartAt.Add(-time.Duration(service.BufferBeforeMinutes) * time.Minute)
		occupiedEnd := slot.EndAt.Add(time.Duration(service.BufferAfterMinutes) * time.Minute)

		booking.Status = newStatus
		booking.ProposalBy = &proposedBy
		booking.ProposedStartAt = &slot.StartAt
		booking.ProposedEndAt = &slot.EndAt
		booking.ProposedOccupiedStartAt = &occupiedStart
		booking.ProposedOccupiedEndAt = &occupiedEnd
		booking.ProposalNote = req.Note

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventProposalCreated,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
		Payload: map[string]interface{}{
			"proposed_start_at": result.ProposedStartAt,
			"proposed_end_at":   result.ProposedEndAt,
		},
	})

	uc.logger.Info("ProposeTime: booking=%d proposal opened for %s", result.ID, result.ProposedStartAt.Format(time.RFC3339))
	return &Response{
		ID:              result.ID,
		Status:          string(result.Status),
		ProposedStartAt: *result.ProposedStartAt,
		ProposedEndAt:   *result.ProposedEndAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// findProposedSlot проверяет, что предложенное время входит в предлагаемые
// слоты целевого дня. Собственные лизы бронирования исключаются из подсчёта
// занятости: действующее окно не должно блокировать своё же предложение.
func (uc *UseCase) findProposedSlot(ctx context.Context, booking *domain.Booking, service *catalogClient.Service, req *Request, now time.Time) (*domain.AvailableSlot, error) {
	settings, err := uc.settingsRepo.GetByProviderID(ctx, booking.ProviderID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = domain.DefaultBookingSettings(booking.ProviderID)
		} else {
			return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
		}
	}

	day := settings.Week.ForWeekday(req.Date.Weekday())
	if !day.Open {
		uc.logger.Warn("ProposeTime: provider id=%d closed on %s", booking.ProviderID, req.Date.Format(domain.DateFormat))
		return nil, ErrProviderClosed
	}

	capacity := domain.EffectiveCapacity(settings.DefaultCapacity, serviceCapacity(service, settings))

	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	blocks, err := uc.blockRepo.ListByProviderAndRange(ctx, booking.ProviderID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list blocks: %v", ErrInternal, err)
	}

	dayLeases, err := uc.leaseService.ListForDay(ctx, booking.ProviderID, booking.StaffKey(), dayStart.Format(domain.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list leases: %v", ErrInternal, err)
	}

	slots := domain.EnumerateSlots(domain.SlotGrid{
		Date:            dayStart,
		Day:             day,
		IntervalMinutes: settings.IntervalMinutes,
		DurationMinutes: service.DurationMinutes,
		BufferBefore:    service.BufferBeforeMinutes,
		BufferAfter:     service.BufferAfterMinutes,
		Capacity:        capacity,
		Blocks:          blocks,
		Leases:          excludeOwnLeases(dayLeases, booking.LockIDs),
		Now:             now,
		LeadMinutes:     uc.policy.SameDayLeadMinutes,
	})

	for i := range slots {
		if slots[i].Key == req.StartTime.String() {
			return &slots[i], nil
		}
	}

	uc.logger.Warn("ProposeTime: slot %s not offered for booking=%d date=%s",
		req.StartTime, booking.ID, req.Date.Format(domain.DateFormat))
	return nil, ErrSlotNotAvailable
}

// checkOwnerAccess проверяет, что пользователь владеет провайдером
func (uc *UseCase) checkOwnerAccess(ctx context.Context, providerID, userID int64) error {
	provider, err := uc.catalogClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			return ErrAccessDenied
		}
		return fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}
	if provider.OwnerID != userID {
		return ErrAccessDenied
	}
	return nil
}

func (uc *UseCase) validateRequest(req *Request) error {
	if req.BookingID <= 0 || req.UserID <= 0 {
		return fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}
	if req.Note != nil && len(*req.Note) > domain.MaxNotesLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	now := uc.timeProvider.Now()
	dateOnly := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dateOnly.Before(nowOnly) {
		return ErrInvalidDate
	}
	return nil
}

// excludeOwnLeases отфильтровывает лизы самого бронирования из занятости дня
func excludeOwnLeases(leases []domain.SeatLease, ownIDs []string) []domain.SeatLease {
	if len(ownIDs) == 0 {
		return leases
	}
	own := make(map[string]struct{}, len(ownIDs))
	for _, id := range ownIDs {
		own[id] = struct{}{}
	}
	filtered := make([]domain.SeatLease, 0, len(leases))
	for _, l := range leases {
		if _, ok := own[l.ID]; ok {
			continue
		}
		filtered = append(filtered, l)
	}
	return filtered
}

// serviceCapacity извлекает вместимость услуги; без явного значения
// услуга наследует вместимость провайдера
func serviceCapacity(service *catalogClient.Service, settings *domain.BookingSettings) int {
	if service.Capacity == nil {
		return settings.DefaultCapacity
	}
	return *service.Capacity
}
