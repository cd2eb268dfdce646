package lease

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/dbmetrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL для нарушения уникальности
const pgUniqueViolation = "23505"

// Repository репозиторий лизов мест (slot_leases).
// Одна строка — эксклюзивный лиз (место × 5-минутный интервал).
// Первичный ключ по id превращает INSERT в create-if-absent:
// два конкурирующих бронирования одного места обязательно столкнутся
// на одинаковом id, и ровно одно из них получит unique violation.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория лизов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch создает все лизы одним INSERT.
// Возвращает ErrLeaseExists, если хотя бы один id уже существует.
// Вызывается только внутри serializable-транзакции.
func (r *Repository) CreateBatch(ctx context.Context, leases []domain.SeatLease) error {
	if len(leases) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("slot_leases").
		Columns(
			"id",
			"provider_id",
			"staff_id",
			"date_key",
			"seat_index",
			"bucket",
			"booking_id",
			"customer_id",
		)

	for _, l := range leases {
		insertBuilder = insertBuilder.Values(
			l.ID,
			l.ProviderID,
			l.StaffID,
			l.DateKey,
			l.SeatIndex,
			l.Bucket,
			l.BookingID,
			l.CustomerID,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrLeaseExists
		}
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ExistingIDs возвращает подмножество переданных id, которые уже заняты.
// Внутри serializable-транзакции это чтение участвует в проверке
// конфликтов: гонка двух транзакций за один id завершится для одной
// из них serialization failure.
func (r *Repository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("slot_leases").
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExistingIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExistingIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	existing := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExistingIDs - scan id: %v", ErrScanRow, err)
		}
		existing = append(existing, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExistingIDs - rows error: %v", ErrScanRow, err)
	}

	return existing, nil
}

// DeleteByIDs удаляет ровно переданный набор лизов.
// Вызывается в одной транзакции со сменой статуса бронирования.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_leases").
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteByIDs - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteByIDs - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

// ListForDay получает все лизы провайдера/сотрудника на дату.
// Используется генератором слотов для подсчёта занятости мест.
func (r *Repository) ListForDay(ctx context.Context, providerID, staffID int64, dateKey string) ([]domain.SeatLease, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"staff_id",
		"date_key",
		"seat_index",
		"bucket",
		"booking_id",
		"customer_id",
		"created_at",
	).
		From("slot_leases").
		Where(squirrel.Eq{
			"provider_id": providerID,
			"staff_id":    staffID,
			"date_key":    dateKey,
		}).
		OrderBy("seat_index ASC, bucket ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListForDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForDay - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	leases := make([]domain.SeatLease, 0)
	for rows.Next() {
		var l domain.SeatLease
		if err := rows.Scan(
			&l.ID,
			&l.ProviderID,
			&l.StaffID,
			&l.DateKey,
			&l.SeatIndex,
			&l.Bucket,
			&l.BookingID,
			&l.CustomerID,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListForDay - scan lease: %v", ErrScanRow, err)
		}
		leases = append(leases, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListForDay - rows error: %v", ErrScanRow, err)
	}

	return leases, nil
}

// DeleteByBookingID удаляет все лизы бронирования по его id.
// Путь терминальных переходов: удаление не зависит от набора lock_ids,
// поэтому разошедшиеся lock_ids не оставляют осиротевших строк.
func (r *Repository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_leases").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteByBookingID - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
