package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

// UseCase use case отмены бронирования клиентом. Штраф за позднюю отмену
// считается по политике, лизы освобождаются в той же транзакции.
type UseCase struct {
	bookingRepo  BookingRepository
	leaseService LeaseService
	notifyClient NotifyServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	policy       domain.PolicyParams
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	leaseService LeaseService,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	policy domain.PolicyParams,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		leaseService: leaseService,
		notifyClient: notifyClient,
		txManager:    txManager,
		timeProvider: timeProvider,
		policy:       policy,
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d by customer=%d", req.BookingID, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}

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
			uc.logger.Warn("CancelBooking: user=%d is not the owner of booking=%d", req.UserID, req.BookingID)
			return ErrAccessDenied
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventCancel, domain.ActorCustomer)
		if err != nil {
			uc.logger.Warn("CancelBooking: cancel rejected for booking=%d status=%s", req.BookingID, booking.Status)
			return ErrCannotCancel
		}

		now := uc.timeProvider.Now()
		feePercent, feeAmount := uc.policy.CancellationFee(booking.ServicePrice, booking.StartAt, now, booking.PaymentSettled)

		if err := uc.leaseService.Release(txCtx, booking.LockIDs); err != nil {
			return fmt.Errorf("%w: failed to release leases: %v", ErrInternal, err)
		}

		booking.Status = newStatus
		booking.LockIDs = nil
		booking.CancelledAt = &now
		booking.CancellationReason = req.Reason
		booking.CancellationFeePercent = feePercent
		booking.CancellationFeeAmount = feeAmount
		booking.ClearProposal()
		if booking.ReferralStatus == domain.ReferralPending {
			booking.ReferralStatus = domain.ReferralVoided
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
		Type:       notifyservice.EventBookingCancelled,
		BookingID:  result.ID,
		ProviderID: result.ProviderID,
		CustomerID: result.CustomerID,
		Payload: map[string]interface{}{
			"fee_percent": result.CancellationFeePercent,
			"fee_amount":  result.CancellationFeeAmount,
		},
	})

	uc.logger.Info("CancelBooking: booking=%d cancelled, fee=%.2f", result.ID, result.CancellationFeeAmount)
	return &Response{
		ID:                     result.ID,
		Status:                 string(result.Status),
		CancellationFeePercent: result.CancellationFeePercent,
		CancellationFeeAmount:  result.CancellationFeeAmount,
		CancelledAt:            *result.CancelledAt,
	}, nil
}
