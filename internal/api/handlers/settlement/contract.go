package settlement

import "context"

type BookingService interface {
	SetPaymentSettled(ctx context.Context, bookingID int64, settled bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
