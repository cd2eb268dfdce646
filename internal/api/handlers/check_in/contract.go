package check_in

import (
	"context"

	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	GenerateCheckInCode(ctx context.Context, bookingID, userID int64) (*models.CheckInCodeResponse, error)
	ConfirmCheckIn(ctx context.Context, bookingID int64, req *models.ConfirmCheckInRequest) (*models.BookingResponse, error)
	RejectCheckIn(ctx context.Context, bookingID int64, req *models.RejectCheckInRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
