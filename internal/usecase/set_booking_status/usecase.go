package set_booking_status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

// UseCase use case решения провайдера по заявке: подтверждение или отказ.
// Подтверждение требует зафиксированной оплаты; отказ освобождает лизы
// в той же транзакции, что меняет статус.
type UseCase struct {
	bookingRepo   BookingRepository
	leaseService  LeaseService
	catalogClient CatalogServiceClient
	notifyClient  NotifyServiceClient
	txManager     TransactionManager
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	leaseService LeaseService,
	catalogClient CatalogServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		leaseService:  leaseService,
		catalogClient: catalogClient,
		notifyClient:  notifyClient,
		txManager:     txManager,
		logger:        logger,
	}
}

// Execute выполняет use case смены статуса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SetBookingStatus: booking=%d action=%s by user=%d", req.BookingID, req.Action, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.Action != ActionApprove && req.Action != ActionReject {
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

		// Неоплаченные бронирования невидимы и неизменяемы для провайдера
		if !booking.PaymentSettled {
			uc.logger.Warn("SetBookingStatus: booking=%d is not settled", req.BookingID)
			if req.Action == ActionApprove {
				return ErrNotSettled
			}
			return ErrBookingNotFound
		}

		switch req.Action {
		case ActionApprove:
			newStatus, err := domain.NextStatus(booking.Status, domain.EventApprove, domain.ActorProvider)
			if err != nil {
				uc.logger.Warn("SetBookingStatus: approve rejected for booking=%d status=%s", req.BookingID, booking.Status)
				return ErrInvalidTransition
			}
			booking.Status = newStatus
			eventType = notifyservice.EventBookingConfirmed

		case ActionReject:
			newStatus, err := domain.NextStatus(booking.Status, domain.EventReject, domain.ActorProvider)
			if err != nil {
				uc.logger.Warn("SetBookingStatus: reject rejected for booking=%d status=%s", req.BookingID, booking.Status)
				return ErrInvalidTransition
			}

			if err := uc.leaseService.Release(txCtx, booking.LockIDs); err != nil {
				return fmt.Errorf("%w: failed to release leases: %v", ErrInternal, err)
			}

			now := time.Now()
			booking.Status = newStatus
			booking.LockIDs = nil
			booking.CancelledAt = &now
			booking.CancellationReason = req.Reason
			booking.ClearProposal()
			if booking.ReferralStatus == domain.ReferralPending {
				booking.ReferralStatus = domain.ReferralVoided
			}
			eventType = notifyservice.EventBookingDeclined
		}

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
		Type:       eventType,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
	})

	uc.logger.Info("SetBookingStatus: booking=%d now %s", result.ID, result.Status)
	return &Response{
		ID:        result.ID,
		Status:    string(result.Status),
		UpdatedAt: result.UpdatedAt,
	}, nil
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
