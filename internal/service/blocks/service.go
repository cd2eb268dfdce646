package blocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	blockRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/block"
	catalogClient "github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/blocks/models"
)

// Service сервис блокировок расписания (отпуска, технические перерывы)
type Service struct {
	blockRepo     BlockRepository
	catalogClient CatalogServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса блокировок
func NewService(
	blockRepo BlockRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *Service {
	return &Service{
		blockRepo:     blockRepo,
		catalogClient: catalogClient,
		logger:        logger,
	}
}

// Create создает блокировку расписания.
// Доступно только владельцу провайдера.
func (s *Service) Create(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("Create: creating block for provider=%d by user=%d [%s, %s) allDay=%t",
		req.ProviderID, req.UserID, req.StartAt.Format(time.RFC3339), req.EndAt.Format(time.RFC3339), req.AllDay)

	if err := s.validateBlock(req); err != nil {
		s.logger.Warn("Create: validation failed for provider=%d: %v", req.ProviderID, err)
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	block, err := s.blockRepo.Create(ctx, req.ToDomainBlock())
	if err != nil {
		s.logger.Error("Create: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created block id=%d for provider=%d", block.ID, req.ProviderID)
	return models.FromDomainBlock(block), nil
}

// Delete удаляет блокировку провайдера.
// Доступно только владельцу провайдера.
func (s *Service) Delete(ctx context.Context, blockID, providerID, userID int64) error {
	s.logger.Info("Delete: deleting block id=%d provider=%d by user=%d", blockID, providerID, userID)

	if err := s.checkOwnerAccess(ctx, providerID, userID); err != nil {
		return err
	}

	if err := s.blockRepo.Delete(ctx, blockID, providerID); err != nil {
		if errors.Is(err, blockRepo.ErrBlockNotFound) {
			s.logger.Warn("Delete: block id=%d not found for provider=%d", blockID, providerID)
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted block id=%d", blockID)
	return nil
}

// List получает блокировки провайдера, пересекающие период [from, to)
func (s *Service) List(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error) {
	s.logger.Info("List: fetching blocks for provider=%d period=[%s, %s)",
		req.ProviderID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	if !req.To.After(req.From) {
		return nil, fmt.Errorf("%w: period end must be after start", ErrInvalidInput)
	}

	blocks, err := s.blockRepo.ListByProviderAndRange(ctx, req.ProviderID, req.From, req.To)
	if err != nil {
		s.logger.Error("List: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBlockList(blocks), nil
}

// ListForDay получает блокировки, пересекающие календарный день.
// Используется генератором слотов.
func (s *Service) ListForDay(ctx context.Context, providerID int64, day time.Time) ([]domain.BookingBlock, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	blocks, err := s.blockRepo.ListByProviderAndRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("ListForDay: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListForDay - repository error: %v", ErrInternal, err)
	}

	return blocks, nil
}

func (s *Service) validateBlock(req *models.CreateBlockRequest) error {
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: startAt and endAt are required", ErrInvalidInput)
	}
	if !req.AllDay && !req.EndAt.After(req.StartAt) {
		return fmt.Errorf("%w: endAt must be after startAt", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxBlockReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxBlockReasonLength)
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
