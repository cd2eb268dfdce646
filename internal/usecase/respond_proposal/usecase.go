package respond_proposal

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

// UseCase use case ответа клиента на предложение провайдера.
// Принятие мигрирует лизы на предложенное окно атомарно: захват нового
// набора и освобождение старого происходят в одной транзакции со сменой
// статуса. Если окно успели занять, транзакция откатывается целиком.
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

// Execute выполняет use case ответа на предложение
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RespondProposal: booking=%d action=%s by customer=%d", req.BookingID, req.Action, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.Action != ActionAccept && req.Action != ActionDecline {
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

		if booking.CustomerID != req.UserID {
			uc.logger.Warn("RespondProposal: user=%d is not the owner of booking=%d", req.UserID, req.BookingID)
			return ErrAccessDenied
		}

		// Отвечать можно только на предложение, открытое провайдером
		if !booking.HasOpenProposal() || *booking.ProposalBy != domain.ProposalByCompany {
			uc.logger.Warn("RespondProposal: booking=%d has no open provider proposal", req.BookingID)
			return ErrNoProposal
		}

		switch req.Action {
		case ActionAccept:
			if err := uc.accept(txCtx, booking); err != nil {
				return err
			}
			eventType = notifyservice.EventProposalAccepted

		case ActionDecline:
			if err := uc.decline(txCtx, booking); err != nil {
				return err
			}
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
			uc.logger.Warn("RespondProposal: serialization conflict, proposed window contended")
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

	uc.logger.Info("RespondProposal: booking=%d now %s", result.ID, result.Status)
	return &Response{
		ID:        result.ID,
		Status:    string(result.Status),
		StartAt:   result.StartAt,
		EndAt:     result.EndAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}

// accept мигрирует бронирование на предложенное окно
func (uc *UseCase) accept(ctx context.Context, booking *domain.Booking) error {
	newStatus, err := domain.NextStatus(booking.Status, domain.EventAcceptProposal, domain.ActorCustomer)
	if err != nil {
		return ErrInvalidTransition
	}

	proposedWindow := booking.ProposedWindow()
	if proposedWindow == nil {
		return ErrNoProposal
	}

	capacity, err := uc.effectiveCapacity(ctx, booking)
	if err != nil {
		return err
	}

	acquired, err := uc.leaseService.Swap(ctx, booking.LockIDs, *proposedWindow, capacity, booking.ID, booking.CustomerID)
	if err != nil {
		if errors.Is(err, leaseSvc.ErrNoSeatAvailable) {
			uc.logger.Warn("RespondProposal: proposed window taken for booking=%d", booking.ID)
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
	booking.BookingDate = proposedWindow.Date
	booking.LockIDs = acquired.LeaseIDs
	booking.ClearProposal()

	// Время изменилось — напоминания пересчитываются заново
	booking.RemindAt24h, booking.RemindAt2h = domain.ReminderTimes(booking.StartAt, now)
	booking.Remind24hSent = false
	booking.Remind2hSent = false

	return nil
}

// decline отклоняет предложение: бронирование отменяется, лизы освобождаются
func (uc *UseCase) decline(ctx context.Context, booking *domain.Booking) error {
	newStatus, err := domain.NextStatus(booking.Status, domain.EventDeclineProposal, domain.ActorCustomer)
	if err != nil {
		return ErrInvalidTransition
	}

	if err := uc.leaseService.Release(ctx, booking.LockIDs); err != nil {
		return fmt.Errorf("%w: failed to release leases: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	booking.Status = newStatus
	booking.LockIDs = nil
	booking.CancelledAt = &now
	booking.ClearProposal()
	if booking.ReferralStatus == domain.ReferralPending {
		booking.ReferralStatus = domain.ReferralVoided
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
