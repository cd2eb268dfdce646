package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

// Service сервис бронирований: выборки, чек-ин, завершение, неявка,
// фиксация оплаты. Транзакционные операции создания и пересогласования
// времени живут в своих usecase-пакетах.
type Service struct {
	bookingRepo   BookingRepository
	leaseService  LeaseService
	catalogClient CatalogServiceClient
	notifyClient  NotifyServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	policy        domain.PolicyParams
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	leaseService LeaseService,
	catalogClient CatalogServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	policy domain.PolicyParams,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		leaseService:  leaseService,
		catalogClient: catalogClient,
		notifyClient:  notifyClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		policy:        policy,
		logger:        logger,
	}
}

// GetByID получает бронирование по ID.
// Клиент видит только своё бронирование; владелец провайдера — любое
// оплаченное бронирование своего провайдера.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента
// с опциональной фильтрацией по набору статусов
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, statuses=%v", req.CustomerID, req.Statuses)

	statuses, err := models.ToDomainStatuses(req.Statuses)
	if err != nil {
		s.logger.Warn("GetCustomerBookings: invalid statuses=%v for customer=%d", req.Statuses, req.CustomerID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, statuses)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования провайдера с фильтрацией по
// сотруднику, услуге, периоду и набору статусов. Неоплаченные
// бронирования в выборку провайдера не попадают. Доступно только
// владельцу провайдера.
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderBookings: fetching bookings for provider=%d, user=%d", req.ProviderID, req.UserID)

	if err := s.checkOwnerAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// SetPaymentSettled фиксирует внешний статус оплаты бронирования.
// Вызывается внутренним эндпоинтом расчётного сервиса; до фиксации
// бронирование невидимо и неизменяемо для провайдера.
func (s *Service) SetPaymentSettled(ctx context.Context, bookingID int64, settled bool) error {
	s.logger.Info("SetPaymentSettled: booking id=%d settled=%t", bookingID, settled)

	if err := s.bookingRepo.SetPaymentSettled(ctx, bookingID, settled); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("SetPaymentSettled: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("SetPaymentSettled: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: SetPaymentSettled - repository error: %v", ErrInternal, err)
	}

	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("getBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("getBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

// checkReadAccess проверяет право чтения бронирования
func (s *Service) checkReadAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	if err := s.checkOwnerAccess(ctx, booking.ProviderID, userID); err != nil {
		return ErrAccessDenied
	}

	// Владелец провайдера не видит неоплаченные бронирования
	if !booking.PaymentSettled {
		return ErrAccessDenied
	}

	return nil
}

// checkOwnerAccess проверяет, что пользователь владеет провайдером
func (s *Service) checkOwnerAccess(ctx context.Context, providerID, userID int64) error {
	provider, err := s.catalogClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("checkOwnerAccess: provider=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get provider=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get provider: %v", ErrInternal, err)
	}

	if provider.OwnerID != userID {
		s.logger.Warn("checkOwnerAccess: user=%d is not the owner of provider=%d", userID, providerID)
		return ErrAccessDenied
	}

	return nil
}
