package leases

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	leaseRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/lease"
)

// Service менеджер лизов мест — ядро конкурентного контроля.
//
// Все методы рассчитаны на вызов внутри serializable-транзакции,
// открытой вызывающим usecase: чтение существующих лизов и их запись
// попадают в один снимок, и две транзакции, претендующие на одно
// место, сериализуются — ровно одна увидит «лиз отсутствует» и выиграет.
type Service struct {
	leaseRepo LeaseRepository
	logger    Logger
}

// NewService создает новый экземпляр менеджера лизов
func NewService(leaseRepo LeaseRepository, logger Logger) *Service {
	return &Service{
		leaseRepo: leaseRepo,
		logger:    logger,
	}
}

// AcquireResult результат успешного захвата места
type AcquireResult struct {
	SeatIndex int
	LeaseIDs  []string
}

// Acquire резервирует первое свободное место под окно бронирования.
//
// Перебирает места 0..capacity-1: для каждого выводит детерминированные
// id лизов окна, читает существующие внутри транзакции, пропускает
// занятые места и вставляет полный набор лизов первого свободного.
// Гонка, проскочившая проверку чтением, ловится либо unique violation
// на вставке, либо serialization failure на коммите — оба случая
// означают «место перехвачено», и перебор продолжается.
func (s *Service) Acquire(ctx context.Context, window domain.LeaseWindow, capacity int, bookingID, customerID int64) (*AcquireResult, error) {
	if len(window.Buckets()) == 0 {
		return nil, ErrEmptyWindow
	}
	if capacity < domain.MinCapacity {
		capacity = domain.MinCapacity
	}

	for seat := 0; seat < capacity; seat++ {
		ids := window.LeaseIDs(seat)

		existing, err := s.leaseRepo.ExistingIDs(ctx, ids)
		if err != nil {
			s.logger.Error("Acquire: failed to read leases for seat=%d booking=%d: %v", seat, bookingID, err)
			return nil, fmt.Errorf("%w: Acquire - read leases: %v", ErrInternal, err)
		}
		if len(existing) > 0 {
			continue
		}

		err = s.leaseRepo.CreateBatch(ctx, window.Leases(seat, bookingID, customerID))
		if err != nil {
			if errors.Is(err, leaseRepo.ErrLeaseExists) {
				// Проиграли гонку за это место между чтением и вставкой
				s.logger.Warn("Acquire: seat=%d taken concurrently, booking=%d, trying next", seat, bookingID)
				continue
			}
			s.logger.Error("Acquire: failed to create leases for seat=%d booking=%d: %v", seat, bookingID, err)
			return nil, fmt.Errorf("%w: Acquire - create leases: %v", ErrInternal, err)
		}

		s.logger.Info("Acquire: booking=%d got seat=%d with %d leases", bookingID, seat, len(ids))
		return &AcquireResult{SeatIndex: seat, LeaseIDs: ids}, nil
	}

	s.logger.Warn("Acquire: no seat available, booking=%d window=[%s, %s)",
		bookingID, window.OccupiedStartAt.Format("15:04"), window.OccupiedEndAt.Format("15:04"))
	return nil, ErrNoSeatAvailable
}

// Release удаляет ровно переданный набор лизов бронирования.
// Вызывается в той же транзакции, что меняет статус бронирования —
// лизы и статус никогда не расходятся.
func (s *Service) Release(ctx context.Context, lockIDs []string) error {
	if len(lockIDs) == 0 {
		return nil
	}

	if err := s.leaseRepo.DeleteByIDs(ctx, lockIDs); err != nil {
		s.logger.Error("Release: failed to delete %d leases: %v", len(lockIDs), err)
		return fmt.Errorf("%w: Release - delete leases: %v", ErrInternal, err)
	}

	return nil
}

// ReleaseByBooking удаляет все лизы бронирования по его id, не полагаясь
// на lock_ids. Используется терминальными переходами: бронирование,
// завершающее жизненный цикл, не должно оставлять лизы, даже если
// lock_ids разошлись с таблицей
func (s *Service) ReleaseByBooking(ctx context.Context, bookingID int64) error {
	if err := s.leaseRepo.DeleteByBookingID(ctx, bookingID); err != nil {
		s.logger.Error("ReleaseByBooking: failed to delete leases for booking=%d: %v", bookingID, err)
		return fmt.Errorf("%w: ReleaseByBooking - delete leases: %v", ErrInternal, err)
	}

	return nil
}

// Swap атомарно переводит бронирование на новое окно: захват нового
// набора лизов и освобождение старого в одной транзакции. Если новое
// окно целиком занять нельзя, транзакция откатывается и прежние лизы
// остаются нетронутыми — частичной миграции не бывает.
func (s *Service) Swap(ctx context.Context, oldLockIDs []string, window domain.LeaseWindow, capacity int, bookingID, customerID int64) (*AcquireResult, error) {
	// Сначала освобождаем старое окно: внутри транзакции удаление видно
	// последующему чтению, поэтому перенос в пересекающееся время не
	// конфликтует со своими же лизами.
	if err := s.Release(ctx, oldLockIDs); err != nil {
		return nil, err
	}

	result, err := s.Acquire(ctx, window, capacity, bookingID, customerID)
	if err != nil {
		// Откат транзакции вернёт старые лизы
		return nil, err
	}

	s.logger.Info("Swap: booking=%d moved to seat=%d, released=%d acquired=%d",
		bookingID, result.SeatIndex, len(oldLockIDs), len(result.LeaseIDs))
	return result, nil
}

// ListForDay возвращает лизы дня для генерации слотов
func (s *Service) ListForDay(ctx context.Context, providerID, staffID int64, dateKey string) ([]domain.SeatLease, error) {
	leases, err := s.leaseRepo.ListForDay(ctx, providerID, staffID, dateKey)
	if err != nil {
		s.logger.Error("ListForDay: failed to list leases provider=%d staff=%d date=%s: %v", providerID, staffID, dateKey, err)
		return nil, fmt.Errorf("%w: ListForDay - list leases: %v", ErrInternal, err)
	}
	return leases, nil
}
