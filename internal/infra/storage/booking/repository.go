package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/dbmetrics"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// bookingColumns полный набор колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"provider_id",
	"staff_id",
	"service_id",
	"customer_id",
	"customer_name",
	"customer_phone",
	"booking_date",
	"start_at",
	"end_at",
	"occupied_start_at",
	"occupied_end_at",
	"status",
	"payment_settled",
	"proposal_by",
	"proposed_start_at",
	"proposed_end_at",
	"proposed_occupied_start_at",
	"proposed_occupied_end_at",
	"proposal_note",
	"customer_reschedule_count",
	"check_in_code",
	"check_in_code_expires_at",
	"checked_in_at",
	"service_name",
	"service_price",
	"cancellation_fee_percent",
	"cancellation_fee_amount",
	"referral_post_id",
	"referral_creator_id",
	"referral_percent",
	"referral_amount",
	"referral_status",
	"remind_at_24h",
	"remind_at_2h",
	"remind_24h_sent",
	"remind_2h_sent",
	"lock_ids",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её —
// создание всегда выполняется в одной транзакции с захватом лизов мест.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"provider_id",
			"staff_id",
			"service_id",
			"customer_id",
			"customer_name",
			"customer_phone",
			"booking_date",
			"start_at",
			"end_at",
			"occupied_start_at",
			"occupied_end_at",
			"status",
			"payment_settled",
			"customer_reschedule_count",
			"service_name",
			"service_price",
			"referral_post_id",
			"referral_creator_id",
			"referral_percent",
			"referral_amount",
			"referral_status",
			"remind_at_24h",
			"remind_at_2h",
			"lock_ids",
			"notes",
		).
		Values(
			b.ProviderID,
			b.StaffID,
			b.ServiceID,
			b.CustomerID,
			b.CustomerName,
			b.CustomerPhone,
			b.BookingDate,
			b.StartAt,
			b.EndAt,
			b.OccupiedStartAt,
			b.OccupiedEndAt,
			b.Status,
			b.PaymentSettled,
			b.CustomerRescheduleCount,
			b.ServiceName,
			b.ServicePrice,
			b.ReferralPostID,
			b.ReferralCreatorID,
			b.ReferralPercent,
			b.ReferralAmount,
			b.ReferralStatus,
			b.RemindAt24h,
			b.RemindAt2h,
			pq.Array(b.LockIDs),
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции добавляет FOR UPDATE — все мутации бронирования
// начинаются с чтения его текущего состояния под блокировкой.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetByCustomerID получает бронирования клиента, опционально по набору статусов
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("booking_date DESC, start_at DESC")

	if len(statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(statuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetWithFilter получает бронирования провайдера с гибкой фильтрацией:
// по сотруднику, услуге, периоду, набору статусов.
// SettledOnly скрывает неоплаченные бронирования — выборки на стороне
// провайдера никогда не видят неоплаченные холды.
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}
	if filter.SettledOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_settled": true})
	}

	if len(filter.Statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.TerminalStatuses)})
	}

	// Для конкретной даты сортируем по времени начала, иначе сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_at ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_at DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountActiveByCustomerAndDate подсчитывает активные бронирования клиента
// у провайдера на конкретную дату (защита от двойного бронирования в один день)
func (r *Repository) CountActiveByCustomerAndDate(ctx context.Context, providerID, customerID int64, date time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{
			"provider_id":  providerID,
			"customer_id":  customerID,
			"booking_date": date,
		}).
		Where(squirrel.NotEq{"status": statusStrings(domain.TerminalStatuses)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveByCustomerAndDate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveByCustomerAndDate - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Update сохраняет все изменяемые поля бронирования.
// Вызывается только внутри транзакции вместе с изменениями лизов —
// статус и лизы никогда не расходятся.
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("booking_date", b.BookingDate).
		Set("start_at", b.StartAt).
		Set("end_at", b.EndAt).
		Set("occupied_start_at", b.OccupiedStartAt).
		Set("occupied_end_at", b.OccupiedEndAt).
		Set("status", b.Status).
		Set("payment_settled", b.PaymentSettled).
		Set("proposal_by", b.ProposalBy).
		Set("proposed_start_at", b.ProposedStartAt).
		Set("proposed_end_at", b.ProposedEndAt).
		Set("proposed_occupied_start_at", b.ProposedOccupiedStartAt).
		Set("proposed_occupied_end_at", b.ProposedOccupiedEndAt).
		Set("proposal_note", b.ProposalNote).
		Set("customer_reschedule_count", b.CustomerRescheduleCount).
		Set("check_in_code", b.CheckInCode).
		Set("check_in_code_expires_at", b.CheckInCodeExpiresAt).
		Set("checked_in_at", b.CheckedInAt).
		Set("cancellation_fee_percent", b.CancellationFeePercent).
		Set("cancellation_fee_amount", b.CancellationFeeAmount).
		Set("referral_percent", b.ReferralPercent).
		Set("referral_amount", b.ReferralAmount).
		Set("referral_status", b.ReferralStatus).
		Set("remind_at_24h", b.RemindAt24h).
		Set("remind_at_2h", b.RemindAt2h).
		Set("remind_24h_sent", b.Remind24hSent).
		Set("remind_2h_sent", b.Remind2hSent).
		Set("lock_ids", pq.Array(b.LockIDs)).
		Set("cancellation_reason", b.CancellationReason).
		Set("cancelled_at", b.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// SetPaymentSettled отмечает внешнее подтверждение оплаты бронирования
func (r *Repository) SetPaymentSettled(ctx context.Context, id int64, settled bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_settled", settled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetPaymentSettled - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetPaymentSettled - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentSettled - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetDueReminders получает бронирования с наступившими и неотправленными
// напоминаниями. Используется диспетчером напоминаний.
func (r *Repository) GetDueReminders(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": statusStrings([]domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed})}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.LtOrEq{"remind_at_24h": now},
				squirrel.Eq{"remind_24h_sent": false},
			},
			squirrel.And{
				squirrel.LtOrEq{"remind_at_2h": now},
				squirrel.Eq{"remind_2h_sent": false},
			},
		}).
		OrderBy("start_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDueReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDueReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// MarkReminderSent отмечает напоминание отправленным
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, column string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if column != "remind_24h_sent" && column != "remind_2h_sent" {
		return fmt.Errorf("%w: MarkReminderSent - unknown reminder column %q", ErrBuildQuery, column)
	}

	query, args, err := psqlbuilder.Update("bookings").
		Set(column, true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkReminderSent - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в доменную модель
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime
	var proposalBy sql.NullString
	var referralStatus sql.NullString
	var lockIDs pq.StringArray

	err := row.Scan(
		&b.ID,
		&b.ProviderID,
		&b.StaffID,
		&b.ServiceID,
		&b.CustomerID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.BookingDate,
		&b.StartAt,
		&b.EndAt,
		&b.OccupiedStartAt,
		&b.OccupiedEndAt,
		&b.Status,
		&b.PaymentSettled,
		&proposalBy,
		&b.ProposedStartAt,
		&b.ProposedEndAt,
		&b.ProposedOccupiedStartAt,
		&b.ProposedOccupiedEndAt,
		&b.ProposalNote,
		&b.CustomerRescheduleCount,
		&b.CheckInCode,
		&b.CheckInCodeExpiresAt,
		&b.CheckedInAt,
		&b.ServiceName,
		&b.ServicePrice,
		&b.CancellationFeePercent,
		&b.CancellationFeeAmount,
		&b.ReferralPostID,
		&b.ReferralCreatorID,
		&b.ReferralPercent,
		&b.ReferralAmount,
		&referralStatus,
		&b.RemindAt24h,
		&b.RemindAt2h,
		&b.Remind24hSent,
		&b.Remind2hSent,
		&lockIDs,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if proposalBy.Valid {
		party := domain.ProposalParty(proposalBy.String)
		b.ProposalBy = &party
	}
	if referralStatus.Valid {
		b.ReferralStatus = domain.ReferralStatus(referralStatus.String)
	} else {
		b.ReferralStatus = domain.ReferralNone
	}
	b.LockIDs = lockIDs
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
