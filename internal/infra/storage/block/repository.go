package block

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/dbmetrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий блокировок расписания (booking_blocks)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую блокировку расписания
func (r *Repository) Create(ctx context.Context, b *domain.BookingBlock) (*domain.BookingBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_blocks").
		Columns(
			"provider_id",
			"start_at",
			"end_at",
			"all_day",
			"reason",
		).
		Values(
			b.ProviderID,
			b.StartAt,
			b.EndAt,
			b.AllDay,
			b.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return b, nil
}

// Delete удаляет блокировку провайдера.
// Условие по provider_id гарантирует, что провайдер удаляет только свои записи.
func (r *Repository) Delete(ctx context.Context, blockID, providerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("booking_blocks").
		Where(squirrel.Eq{
			"id":          blockID,
			"provider_id": providerID,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// ListByProviderAndRange получает блокировки провайдера, пересекающие
// полуоткрытый интервал [from, to)
func (r *Repository) ListByProviderAndRange(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookingBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"start_at",
		"end_at",
		"all_day",
		"reason",
		"created_at",
	).
		From("booking_blocks").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByProviderAndRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProviderAndRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]domain.BookingBlock, 0)
	for rows.Next() {
		var b domain.BookingBlock
		var reason sql.NullString
		if err := rows.Scan(
			&b.ID,
			&b.ProviderID,
			&b.StartAt,
			&b.EndAt,
			&b.AllDay,
			&reason,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListByProviderAndRange - scan block: %v", ErrScanRow, err)
		}
		b.Reason = reason.String
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByProviderAndRange - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// GetByID получает блокировку по идентификатору
func (r *Repository) GetByID(ctx context.Context, blockID int64) (*domain.BookingBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"start_at",
		"end_at",
		"all_day",
		"reason",
		"created_at",
	).
		From("booking_blocks").
		Where(squirrel.Eq{"id": blockID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.BookingBlock
	var reason sql.NullString
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.ProviderID,
		&b.StartAt,
		&b.EndAt,
		&b.AllDay,
		&reason,
		&b.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %v", ErrScanRow, err)
	}

	b.Reason = reason.String
	return &b, nil
}
