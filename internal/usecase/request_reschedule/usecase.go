package request_reschedule

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

// UseCase use case запроса клиента на перенос времени в рамках того же дня.
// Перенос на другую дату клиенту недоступен: для этого бронирование
// отменяется и создаётся заново. Лизы не трогаются до решения провайдера.
// Если запрошенное время недоступно, предлагается ближайший следующий слот.
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

// Execute выполняет use case запроса на перенос
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RequestReschedule: booking=%d by customer=%d time=%s", req.BookingID, req.UserID, req.StartTime)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}
	if req.Note != nil && len(*req.Note) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	now := uc.timeProvider.Now()
	var result *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if booking.CustomerID != req.UserID {
			uc.logger.Warn("RequestReschedule: user=%d is not the owner of booking=%d", req.UserID, req.BookingID)
			return ErrAccessDenied
		}

		if booking.CustomerRescheduleCount >= uc.policy.MaxCustomerReschedules {
			uc.logger.Warn("RequestReschedule: booking=%d reschedule limit reached (%d)",
				req.BookingID, booking.CustomerRescheduleCount)
			return ErrLimitReached
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventRequestReschedule, domain.ActorCustomer)
		if err != nil {
			uc.logger.Warn("RequestReschedule: rejected for booking=%d status=%s", req.BookingID, booking.Status)
			return ErrInvalidTransition
		}

		service, err := uc.catalogClient.GetService(txCtx, booking.ServiceID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		slot, err := uc.pickSlot(txCtx, booking, service, req.StartTime.String(), now)
		if err != nil {
			return err
		}

		proposedBy := domain.ProposalByCustomer
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
		Type:       notifyservice.EventRescheduleRequest,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
		Payload: map[string]interface{}{
			"proposed_start_at": result.ProposedStartAt,
			"proposed_end_at":   result.ProposedEndAt,
		},
	})

	uc.logger.Info("RequestReschedule: booking=%d requested %s", result.ID, result.ProposedStartAt.Format(time.RFC3339))
	return &Response{
		ID:              result.ID,
		Status:          string(result.Status),
		ProposedStartAt: *result.ProposedStartAt,
		ProposedEndAt:   *result.ProposedEndAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// pickSlot выбирает слот в день бронирования: запрошенное время, если оно
// среди предлагаемых, иначе ближайший следующий слот. Собственные лизы
// бронирования исключаются из подсчёта занятости.
func (uc *UseCase) pickSlot(ctx context.Context, booking *domain.Booking, service *catalogClient.Service, requestedKey string, now time.Time) (*domain.AvailableSlot, error) {
	settings, err := uc.settingsRepo.GetByProviderID(ctx, booking.ProviderID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = domain.DefaultBookingSettings(booking.ProviderID)
		} else {
			return nil, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
		}
	}

	dayStart := booking.BookingDate
	day := settings.Week.ForWeekday(dayStart.Weekday())
	if !day.Open {
		return nil, ErrSlotNotAvailable
	}

	serviceCap := settings.DefaultCapacity
	if service.Capacity != nil {
		serviceCap = *service.Capacity
	}
	capacity := domain.EffectiveCapacity(settings.DefaultCapacity, serviceCap)

	blocks, err := uc.blockRepo.ListByProviderAndRange(ctx, booking.ProviderID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list blocks: %v", ErrInternal, err)
	}

	dayLeases, err := uc.leaseService.ListForDay(ctx, booking.ProviderID, booking.StaffKey(), dayStart.Format(domain.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list leases: %v", ErrInternal, err)
	}

	grid := domain.SlotGrid{
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
	}

	slots := domain.EnumerateSlots(grid)
	for i := range slots {
		if slots[i].Key == requestedKey {
			return &slots[i], nil
		}
	}

	// Запрошенное время занято — предлагаем ближайший следующий слот
	requestedStart := startAtFromKey(dayStart, requestedKey)
	if next := domain.FindNextSlot(grid, requestedStart); next != nil {
		uc.logger.Info("RequestReschedule: booking=%d slot %s taken, offering %s", booking.ID, requestedKey, next.Key)
		return next, nil
	}

	uc.logger.Warn("RequestReschedule: no slot available for booking=%d after %s", booking.ID, requestedKey)
	return nil, ErrSlotNotAvailable
}

// startAtFromKey переводит ключ "HH:MM" в момент времени внутри дня
func startAtFromKey(dayStart time.Time, key string) time.Time {
	var hh, mm int
	fmt.Sscanf(key, "%d:%d", &hh, &mm)
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hh, mm, 0, 0, dayStart.Location())
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
