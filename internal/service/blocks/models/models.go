package models

import (
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

// Request модели

// CreateBlockRequest запрос на создание блокировки расписания
type CreateBlockRequest struct {
	UserID     int64     `json:"-"`
	ProviderID int64     `json:"-"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	AllDay     bool      `json:"allDay"`
	Reason     string    `json:"reason,omitempty"`
}

// ListBlocksRequest запрос на получение блокировок за период
type ListBlocksRequest struct {
	ProviderID int64
	From       time.Time
	To         time.Time
}

// Response модели

// BlockResponse ответ с данными блокировки
type BlockResponse struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerId"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	AllDay     bool      `json:"allDay"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BlockListResponse ответ со списком блокировок
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// Методы конвертации

// ToDomainBlock конвертирует запрос в доменную модель
func (r *CreateBlockRequest) ToDomainBlock() *domain.BookingBlock {
	return &domain.BookingBlock{
		ProviderID: r.ProviderID,
		StartAt:    r.StartAt,
		EndAt:      r.EndAt,
		AllDay:     r.AllDay,
		Reason:     r.Reason,
	}
}

// FromDomainBlock конвертирует доменную модель в DTO
func FromDomainBlock(b *domain.BookingBlock) *BlockResponse {
	if b == nil {
		return nil
	}
	return &BlockResponse{
		ID:         b.ID,
		ProviderID: b.ProviderID,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		AllDay:     b.AllDay,
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
}

// FromDomainBlockList конвертирует список доменных моделей в DTO
func FromDomainBlockList(blocks []domain.BookingBlock) *BlockListResponse {
	resp := &BlockListResponse{
		Blocks: make([]BlockResponse, 0, len(blocks)),
	}
	for i := range blocks {
		resp.Blocks = append(resp.Blocks, *FromDomainBlock(&blocks[i]))
	}
	return resp
}
