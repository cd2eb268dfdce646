package leases

import (
	"context"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

// LeaseRepository интерфейс репозитория лизов мест
type LeaseRepository interface {
	CreateBatch(ctx context.Context, leases []domain.SeatLease) error
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByBookingID(ctx context.Context, bookingID int64) error
	ListForDay(ctx context.Context, providerID, staffID int64, dateKey string) ([]domain.SeatLease, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
