package lease

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), mock
}

func sampleLeases() []domain.SeatLease {
	w := domain.LeaseWindow{
		ProviderID:      7,
		StaffID:         3,
		Date:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		OccupiedStartAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		OccupiedEndAt:   time.Date(2026, 3, 10, 10, 10, 0, 0, time.UTC),
	}
	return w.Leases(0, 101, 55)
}

func TestCreateBatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	leases := sampleLeases()

	mock.ExpectExec(`INSERT INTO slot_leases`).
		WillReturnResult(sqlmock.NewResult(0, int64(len(leases))))

	err := repo.CreateBatch(context.Background(), leases)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO slot_leases`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateBatch(context.Background(), sampleLeases())
	assert.ErrorIs(t, err, ErrLeaseExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_EmptyInput(t *testing.T) {
	repo, mock := newMockRepo(t)

	// без лизов запрос не выполняется
	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	leases := sampleLeases()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(leases[0].ID)
	mock.ExpectQuery(`SELECT id FROM slot_leases`).WillReturnRows(rows)

	existing, err := repo.ExistingIDs(context.Background(), []string{leases[0].ID, leases[1].ID})
	require.NoError(t, err)
	assert.Equal(t, []string{leases[0].ID}, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingIDs_EmptyInput(t *testing.T) {
	repo, mock := newMockRepo(t)

	existing, err := repo.ExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	leases := sampleLeases()

	mock.ExpectExec(`DELETE FROM slot_leases`).
		WillReturnResult(sqlmock.NewResult(0, int64(len(leases))))

	err := repo.DeleteByIDs(context.Background(), []string{leases[0].ID, leases[1].ID})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByBookingID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM slot_leases`).
		WithArgs(int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 12))

	err := repo.DeleteByBookingID(context.Background(), 101)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForDay(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "provider_id", "staff_id", "date_key", "seat_index", "bucket", "booking_id", "customer_id", "created_at",
	}).AddRow("p7:s3:2026-03-10:seat0:b120", 7, 3, "2026-03-10", 0, 120, 101, 55, now)

	mock.ExpectQuery(`SELECT .+ FROM slot_leases`).
		WithArgs("2026-03-10", int64(7), int64(3)).
		WillReturnRows(rows)

	leases, err := repo.ListForDay(context.Background(), 7, 3, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, "p7:s3:2026-03-10:seat0:b120", leases[0].ID)
	assert.Equal(t, 120, leases[0].Bucket)
	assert.Equal(t, int64(101), leases[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
