package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/settings/models"
)

// Service сервис настроек бронирования провайдера
type Service struct {
	settingsRepo  SettingsRepository
	catalogClient CatalogServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	settingsRepo SettingsRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *Service {
	return &Service{
		settingsRepo:  settingsRepo,
		catalogClient: catalogClient,
		logger:        logger,
	}
}

// Get получает настройки бронирования провайдера.
// Провайдер без сохранённых настроек получает дефолтные (бронирование выключено).
func (s *Service) Get(ctx context.Context, providerID int64) (*models.SettingsResponse, error) {
	s.logger.Info("Get: fetching settings for provider=%d", providerID)

	settings, err := s.settingsRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			s.logger.Info("Get: provider=%d has no saved settings, returning defaults", providerID)
			return models.FromDomainSettings(domain.DefaultBookingSettings(providerID)), nil
		}
		s.logger.Error("Get: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSettings(settings), nil
}

// GetDomain получает доменную модель настроек для внутренних потребителей
// (генератор слотов, создание бронирования)
func (s *Service) GetDomain(ctx context.Context, providerID int64) (*domain.BookingSettings, error) {
	settings, err := s.settingsRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return domain.DefaultBookingSettings(providerID), nil
		}
		return nil, fmt.Errorf("%w: GetDomain - repository error: %v", ErrInternal, err)
	}
	return settings, nil
}

// Update сохраняет настройки провайдера целиком.
// Доступно только владельцу провайдера.
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("Update: updating settings for provider=%d by user=%d", req.ProviderID, req.UserID)

	if err := s.checkOwnerAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	settings, err := req.ToDomainSettings()
	if err != nil {
		s.logger.Warn("Update: invalid settings for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := settings.Week.Validate(); err != nil {
		s.logger.Warn("Update: invalid week schedule for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.settingsRepo.Upsert(ctx, settings)
	if err != nil {
		s.logger.Error("Update: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully saved settings for provider=%d", req.ProviderID)
	return models.FromDomainSettings(saved), nil
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
