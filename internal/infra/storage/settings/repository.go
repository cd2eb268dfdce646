package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/dbmetrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий настроек бронирования провайдера
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProviderID получает настройки бронирования провайдера
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) (*domain.BookingSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"provider_id",
		"enabled",
		"interval_minutes",
		"auto_confirm",
		"default_capacity",
		"week_schedule",
		"created_at",
		"updated_at",
	).
		From("booking_settings").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.BookingSettings
	var rawSchedule []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ProviderID,
		&s.Enabled,
		&s.IntervalMinutes,
		&s.AutoConfirm,
		&s.DefaultCapacity,
		&rawSchedule,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - scan settings: %v", ErrScanRow, err)
	}

	week, err := decodeWeekSchedule(rawSchedule)
	if err != nil {
		return nil, err
	}

	s.Week = week
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// Upsert сохраняет настройки целиком: запись всегда перезаписывает
// всю структуру, частичного слияния вложенных диапазонов нет
func (r *Repository) Upsert(ctx context.Context, s *domain.BookingSettings) (*domain.BookingSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rawSchedule, err := encodeWeekSchedule(s.Week)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert("booking_settings").
		Columns(
			"provider_id",
			"enabled",
			"interval_minutes",
			"auto_confirm",
			"default_capacity",
			"week_schedule",
		).
		Values(
			s.ProviderID,
			s.Enabled,
			s.IntervalMinutes,
			s.AutoConfirm,
			s.DefaultCapacity,
			rawSchedule,
		).
		Suffix(`ON CONFLICT (provider_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			interval_minutes = EXCLUDED.interval_minutes,
			auto_confirm = EXCLUDED.auto_confirm,
			default_capacity = EXCLUDED.default_capacity,
			week_schedule = EXCLUDED.week_schedule,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}
