package create_booking

import (
	"context"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	CountActiveByCustomerAndDate(ctx context.Context, providerID, customerID int64, date time.Time) (int, error)
}

// SettingsRepository интерфейс репозитория настроек бронирования
type SettingsRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) (*domain.BookingSettings, error)
}

// BlockRepository интерфейс репозитория блокировок расписания
type BlockRepository interface {
	ListByProviderAndRange(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookingBlock, error)
}

// LeaseService интерфейс менеджера лизов мест
type LeaseService interface {
	Acquire(ctx context.Context, window domain.LeaseWindow, capacity int, bookingID, customerID int64) (*leases.AcquireResult, error)
	ListForDay(ctx context.Context, providerID, staffID int64, dateKey string) ([]domain.SeatLease, error)
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
	GetStaffMember(ctx context.Context, providerID, staffID int64) (*catalogservice.StaffMember, error)
}

// NotifyServiceClient интерфейс клиента уведомлений
type NotifyServiceClient interface {
	SendEventAsync(event notifyservice.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
