package blocks

import (
	"context"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
)

// BlockRepository интерфейс репозитория блокировок расписания
type BlockRepository interface {
	Create(ctx context.Context, b *domain.BookingBlock) (*domain.BookingBlock, error)
	Delete(ctx context.Context, blockID, providerID int64) error
	ListByProviderAndRange(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookingBlock, error)
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
