package respond_reschedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	leaseSvc "github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/txmanager"
)

// UseCase use case решения провайдера по запросу клиента на перенос.
// Одобрение мигрирует лизы на запрошенное окно и списывает попытку
// переноса; отклонение возвращает бронирование в confirmed без каких-либо
// изменений времени и лизов.
type UseCase struct {
	bookingRepo   BookingRepository
	settingsRepo  SettingsRepository
	leaseService  LeaseService
	catalogClient CatalogServiceClient
	notifyClient  NotifyServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	settingsRepo SettingsRepository,
	leaseService LeaseService,
	catalogClient CatalogServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		settingsRepo:  settingsRepo,
		leaseService:  leaseService,
		catalogClient: catalogClient,
		notifyClient:  notifyClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case решения по переносу
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RespondReschedule: booking=%d action=%s by user=%d", req.BookingID, req.Action, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.Action != ActionApprove && req.Action != ActionDecline {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}

	var result *domain.Booking
	var eventType string

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

		// Решение принимается только по запросу, открытому клиентом
		if !booking.HasOpenProposal() || *booking.ProposalBy != domain.ProposalByCustomer {
			uc.logger.Warn("RespondReschedule: booking=%d has no open customer request", req.BookingID)
			return ErrNoRequest
		}

		switch req.Action {
		case ActionApprove:
			if err := uc.approve(txCtx, booking); err != nil {
				return err
			}
			eventType = notifyservice.EventProposalAccepted

		case ActionDecline:
			newStatus, err := domain.NextStatus(booking.Status, domain.EventDeclineReschedule, domain.ActorProvider)
			if err != nil {
				return ErrInvalidTransition
			}
			booking.Status = newStatus
			booking.ClearProposal()
			eventType = notifyservice.EventProposalDeclined
		}

		if err := uc.bookingRepo.Update(txCtx, booking); err != nil {
			return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationConflict) {
			uc.logger.Warn("RespondReschedule: serialization conflict, requested window contended")
			return nil, ErrSlotNotAvailable
		}
		return nil, err
	}

	uc.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       eventType,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
	})

	uc.logger.Info("RespondReschedule: booking=%d now %s", result.ID, result.Status)
	return &Response{
		ID:        result.ID,
		Status:    string(result.Status),
		StartAt:   result.StartAt,
		EndAt:     result.EndAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}

// approve мигрирует бронирование на запрошенное клиентом окно
func (uc *UseCase) approve(ctx context.Context, booking *domain.Booking) error {
	newStatus, err := domain.NextStatus(booking.Status, domain.EventApproveReschedule, domain.ActorProvider)
	if err != nil {
		return ErrInvalidTransition
	}

	requestedWindow := booking.ProposedWindow()
	if requestedWindow == nil {
		return ErrNoRequest
	}

	capacity, err := uc.effectiveCapacity(ctx, booking)
	if err != nil {
		return err
	}

	acquired, err := uc.leaseService.Swap(ctx, booking.LockIDs, *requestedWindow, capacity, booking.ID, booking.CustomerID)
	if err != nil {
		if errors.Is(err, leaseSvc.ErrNoSeatAvailable) {
			uc.logger.Warn("RespondReschedule: requested window taken for booking=%d", booking.ID)
			return ErrSlotNotAvailable
		}
		return fmt.Errorf("%w: failed to swap leases: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()

	booking.Status = newStatus
	booking.StartAt = *booking.ProposedStartAt
	booking.EndAt = *booking.ProposedEndAt
	booking.OccupiedStartAt = *booking.ProposedOccupiedStartAt
	booking.OccupiedEndAt = *booking.ProposedOccupiedEndAt
	booking.BookingDate = requestedWindow.Date
	booking.LockIDs = acquired.LeaseIDs
	booking.CustomerRescheduleCount++
	booking.ClearProposal()

	// Время изменилось — напоминания пересчитываются заново
	booking.RemindAt24h, booking.RemindAt2h = domain.ReminderTimes(booking.StartAt, now)
	booking.Remind24hSent = false
	booking.Remind2hSent = false

	return nil
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

// effectiveCapacity вычисляет число мест для окна бронирования
func (uc *UseCase) effectiveCapacity(ctx context.Context, booking *domain.Booking) (int, error) {
	service, err := uc.catalogClient.GetService(ctx, booking.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			return 0, ErrServiceNotFound
		}
		return 0, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	settings, err := uc.settingsRepo.GetByProviderID(ctx, booking.ProviderID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			settings = domain.DefaultBookingSettings(booking.ProviderID)
		} else {
			return 0, fmt.Errorf("%w: failed to get settings: %v", ErrInternal, err)
		}
	}

	serviceCap := settings.DefaultCapacity
	if service.Capacity != nil {
		serviceCap = *service.Capacity
	}
	return domain.EffectiveCapacity(settings.DefaultCapacity, serviceCap), nil
}
