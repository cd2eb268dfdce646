package bookings

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

const checkInCodeDigits = 6

// GenerateCheckInCode выпускает одноразовый код чек-ина с коротким TTL.
// Доступно владельцу провайдера для подтверждённого бронирования.
// Повторный вызов заменяет действующий код. Вместе с кодом возвращается
// QR в PNG (base64) для показа клиенту на стойке.
func (s *Service) GenerateCheckInCode(ctx context.Context, bookingID, userID int64) (*models.CheckInCodeResponse, error) {
	s.logger.Info("GenerateCheckInCode: booking id=%d by user=%d", bookingID, userID)

	var (
		issued    *domain.Booking
		code      string
		expiresAt time.Time
	)

	// Чтение и запись кода в одной транзакции: проверка статуса не должна
	// опираться на снимок, который параллельная отмена успела изменить
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := s.checkOwnerAccess(ctx, booking.ProviderID, userID); err != nil {
			return err
		}
		if !booking.PaymentSettled {
			s.logger.Warn("GenerateCheckInCode: booking id=%d is not settled", bookingID)
			return ErrNotSettled
		}
		if booking.Status != domain.StatusConfirmed {
			s.logger.Warn("GenerateCheckInCode: booking id=%d has status=%s, want confirmed", bookingID, booking.Status)
			return ErrInvalidStatus
		}

		code, err = generateNumericCode(checkInCodeDigits)
		if err != nil {
			s.logger.Error("GenerateCheckInCode: failed to generate code for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: generate code: %v", ErrInternal, err)
		}

		expiresAt = s.policy.CheckInCodeExpiry(s.timeProvider.Now())
		booking.CheckInCode = &code
		booking.CheckInCodeExpiresAt = &expiresAt

		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			s.logger.Error("GenerateCheckInCode: failed to store code for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: store code: %v", ErrInternal, err)
		}

		issued = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	qrPNG, err := qrcode.Encode(checkInPayload(bookingID, code), qrcode.Medium, 256)
	if err != nil {
		s.logger.Error("GenerateCheckInCode: failed to encode QR for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: encode qr: %v", ErrInternal, err)
	}

	s.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventCheckInRequested,
		BookingID:  issued.ID,
		ProviderID: issued.ProviderID,
		CustomerID: issued.CustomerID,
	})

	s.logger.Info("GenerateCheckInCode: issued code for booking id=%d, expires at %s",
		bookingID, expiresAt.Format(time.RFC3339))

	return &models.CheckInCodeResponse{
		BookingID: bookingID,
		Code:      code,
		ExpiresAt: expiresAt,
		QRCodePNG: base64.StdEncoding.EncodeToString(qrPNG),
	}, nil
}

// ConfirmCheckIn подтверждает прибытие клиента: код должен совпасть и
// не истечь. Срок кода проверяется в момент использования — фоновой
// чистки кодов нет. Успех переводит бронирование в checked_in.
// Проверка перехода и запись статуса выполняются в одной SERIALIZABLE
// транзакции, иначе параллельная отмена между чтением и записью была бы
// молча перезаписана статусом checked_in с устаревшими lock_ids.
func (s *Service) ConfirmCheckIn(ctx context.Context, bookingID int64, req *models.ConfirmCheckInRequest) (*models.BookingResponse, error) {
	s.logger.Info("ConfirmCheckIn: booking id=%d by customer=%d", bookingID, req.CustomerID)

	var checkedIn *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.CustomerID != req.CustomerID {
			s.logger.Warn("ConfirmCheckIn: customer=%d does not own booking id=%d", req.CustomerID, bookingID)
			return ErrAccessDenied
		}

		newStatus, err := domain.NextStatus(booking.Status, domain.EventConfirmCheckIn, domain.ActorCustomer)
		if err != nil {
			s.logger.Warn("ConfirmCheckIn: booking id=%d transition rejected: %v", bookingID, err)
			return ErrInvalidStatus
		}

		if booking.CheckInCode == nil || booking.CheckInCodeExpiresAt == nil {
			return ErrNoCode
		}
		if s.timeProvider.Now().After(*booking.CheckInCodeExpiresAt) {
			s.logger.Warn("ConfirmCheckIn: booking id=%d code expired at %s",
				bookingID, booking.CheckInCodeExpiresAt.Format(time.RFC3339))
			return ErrCodeExpired
		}
		if *booking.CheckInCode != req.Code {
			s.logger.Warn("ConfirmCheckIn: booking id=%d code mismatch", bookingID)
			return ErrCodeMismatch
		}

		now := s.timeProvider.Now()
		booking.Status = newStatus
		booking.CheckedInAt = &now
		booking.CheckInCode = nil
		booking.CheckInCodeExpiresAt = nil

		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			s.logger.Error("ConfirmCheckIn: failed to update booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: update booking: %v", ErrInternal, err)
		}

		checkedIn = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyClient.SendEventAsync(notifyservice.Event{
		Type:       notifyservice.EventCheckInConfirmed,
		BookingID:  checkedIn.ID,
		ProviderID: checkedIn.ProviderID,
		CustomerID: checkedIn.CustomerID,
	})

	s.logger.Info("ConfirmCheckIn: booking id=%d checked in", bookingID)
	return models.FromDomainBooking(checkedIn), nil
}

// RejectCheckIn фиксирует отказ клиента от чек-ина. Статус не меняется:
// создаётся отчёт об инциденте и уходит уведомление провайдеру.
func (s *Service) RejectCheckIn(ctx context.Context, bookingID int64, req *models.RejectCheckInRequest) error {
	s.logger.Info("RejectCheckIn: booking id=%d by customer=%d", bookingID, req.CustomerID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.CustomerID != req.CustomerID {
		s.logger.Warn("RejectCheckIn: customer=%d does not own booking id=%d", req.CustomerID, bookingID)
		return ErrAccessDenied
	}
	if booking.Status != domain.StatusConfirmed {
		s.logger.Warn("RejectCheckIn: booking id=%d has status=%s, want confirmed", bookingID, booking.Status)
		return ErrInvalidStatus
	}

	reportID := uuid.NewString()
	s.logger.Warn("RejectCheckIn: exception report %s for booking id=%d customer=%d reason=%q",
		reportID, bookingID, req.CustomerID, req.Reason)

	s.notifyClient.SendEventAsync(notifyservice.Event{
		EventID:    reportID,
		Type:       notifyservice.EventCheckInRejected,
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		Payload: map[string]interface{}{
			"reason": req.Reason,
		},
	})

	return nil
}

// checkInPayload содержимое QR-кода чек-ина
func checkInPayload(bookingID int64, code string) string {
	return fmt.Sprintf("lma://check-in?booking=%d&code=%s", bookingID, code)
}

// generateNumericCode возвращает криптослучайный код из digits цифр
func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
