package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

// Complete завершает бронирование после чек-ина. Лизы освобождаются в
// той же транзакции, что меняет статус; начисленная реферальная
// комиссия подтверждается.
func (s *Service) Complete(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Complete: booking id=%d by user=%d", bookingID, userID)

	var completed *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := s.checkOwnerAccess(ctx, booking.ProviderID, userID); err != nil {
			return err
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventComplete, domain.ActorProvider)
		if err != nil {
			s.logger.Warn("Complete: booking id=%d transition rejected: %v", bookingID, err)
			return ErrInvalidStatus
		}

		// Удаление по booking_id, а не по набору lock_ids: терминальный
		// переход не должен оставлять лизы, даже если lock_ids разошлись
		// с таблицей лизов
		if err := s.leaseService.ReleaseByBooking(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: Complete - release leases: %v", ErrInternal, err)
		}

		booking.Status = newStatus
		booking.LockIDs = nil
		if booking.ReferralStatus == domain.ReferralPending {
			booking.ReferralStatus = domain.ReferralConfirmed
		}

		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return fmt.Errorf("%w: Complete - update booking: %v", ErrInternal, err)
		}

		completed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventBookingCompleted,
		BookingID:  completed.ID,
		ProviderID: completed.ProviderID,
		CustomerID: completed.CustomerID,
	})

	s.logger.Info("Complete: booking id=%d completed, referral=%s", bookingID, completed.ReferralStatus)
	return models.FromDomainBooking(completed), nil
}

// NoShow фиксирует неявку клиента. Разрешено только после льготного
// периода от начала бронирования; терминальный переход с освобождением
// лизов и аннулированием реферальной комиссии.
func (s *Service) NoShow(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("NoShow: booking id=%d by user=%d", bookingID, userID)

	var reported *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := s.checkOwnerAccess(ctx, booking.ProviderID, userID); err != nil {
			return err
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventReportNoShow, domain.ActorProvider)
		if err != nil {
			s.logger.Warn("NoShow: booking id=%d transition rejected: %v", bookingID, err)
			return ErrInvalidStatus
		}

		allowedAt := s.policy.NoShowAllowedAt(booking.StartAt)
		if s.timeProvider.Now().Before(allowedAt) {
			s.logger.Warn("NoShow: booking id=%d too early, allowed at %s",
				bookingID, allowedAt.Format(time.RFC3339))
			return ErrTooEarlyNoShow
		}

		if err := s.leaseService.ReleaseByBooking(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: NoShow - release leases: %v", ErrInternal, err)
		}

		booking.Status = newStatus
		booking.LockIDs = nil
		if booking.ReferralStatus == domain.ReferralPending {
			booking.ReferralStatus = domain.ReferralVoided
		}

		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return fmt.Errorf("%w: NoShow - update booking: %v", ErrInternal, err)
		}

		reported = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventBookingNoShow,
		BookingID:  reported.ID,
		ProviderID: reported.ProviderID,
		CustomerID: reported.CustomerID,
	})

	s.logger.Info("NoShow: booking id=%d marked as no-show", bookingID)
	return models.FromDomainBooking(reported), nil
}
