package leases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	leaseRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/lease"
)

// fakeLeaseRepo in-memory репозиторий лизов для тестов сервиса
type fakeLeaseRepo struct {
	leases map[string]domain.SeatLease
	// failSeats имитирует проигранную гонку: CreateBatch для этих мест
	// возвращает ErrLeaseExists, хотя чтение их не увидело
	failSeats map[int]bool
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{
		leases:    make(map[string]domain.SeatLease),
		failSeats: make(map[int]bool),
	}
}

func (f *fakeLeaseRepo) CreateBatch(_ context.Context, leases []domain.SeatLease) error {
	for _, l := range leases {
		if f.failSeats[l.SeatIndex] {
			return leaseRepo.ErrLeaseExists
		}
		if _, ok := f.leases[l.ID]; ok {
			return leaseRepo.ErrLeaseExists
		}
	}
	for _, l := range leases {
		f.leases[l.ID] = l
	}
	return nil
}

func (f *fakeLeaseRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var existing []string
	for _, id := range ids {
		if _, ok := f.leases[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (f *fakeLeaseRepo) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.leases, id)
	}
	return nil
}

func (f *fakeLeaseRepo) DeleteByBookingID(_ context.Context, bookingID int64) error {
	for id, l := range f.leases {
		if l.BookingID == bookingID {
			delete(f.leases, id)
		}
	}
	return nil
}

func (f *fakeLeaseRepo) ListForDay(_ context.Context, providerID, staffID int64, dateKey string) ([]domain.SeatLease, error) {
	var out []domain.SeatLease
	for _, l := range f.leases {
		if l.ProviderID == providerID && l.StaffID == staffID && l.DateKey == dateKey {
			out = append(out, l)
		}
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testWindow() domain.LeaseWindow {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.LeaseWindow{
		ProviderID:      7,
		StaffID:         3,
		Date:            day,
		OccupiedStartAt: day.Add(10 * time.Hour),
		OccupiedEndAt:   day.Add(11 * time.Hour),
	}
}

func TestAcquire_FirstSeat(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})

	result, err := svc.Acquire(context.Background(), testWindow(), 2, 101, 55)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SeatIndex)
	assert.Len(t, result.LeaseIDs, 12) // час из 5-минутных интервалов
	assert.Len(t, repo.leases, 12)
}

func TestAcquire_SkipsOccupiedSeat(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	first, err := svc.Acquire(ctx, testWindow(), 2, 101, 55)
	require.NoError(t, err)
	require.Equal(t, 0, first.SeatIndex)

	second, err := svc.Acquire(ctx, testWindow(), 2, 102, 56)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SeatIndex)
}

func TestAcquire_NoSeatAvailable(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	_, err = svc.Acquire(ctx, testWindow(), 1, 102, 56)
	assert.ErrorIs(t, err, ErrNoSeatAvailable)
}

func TestAcquire_PartialOverlapBlocksSeat(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	// окно 10:30-11:30 пересекает занятое 10:00-11:00 частично
	overlapping := testWindow()
	overlapping.OccupiedStartAt = overlapping.OccupiedStartAt.Add(30 * time.Minute)
	overlapping.OccupiedEndAt = overlapping.OccupiedEndAt.Add(30 * time.Minute)

	_, err = svc.Acquire(ctx, overlapping, 1, 102, 56)
	assert.ErrorIs(t, err, ErrNoSeatAvailable)
}

func TestAcquire_LostRaceFallsThroughToNextSeat(t *testing.T) {
	repo := newFakeLeaseRepo()
	repo.failSeats[0] = true
	svc := NewService(repo, nopLogger{})

	result, err := svc.Acquire(context.Background(), testWindow(), 2, 101, 55)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SeatIndex)
}

func TestAcquire_EmptyWindow(t *testing.T) {
	svc := NewService(newFakeLeaseRepo(), nopLogger{})

	w := testWindow()
	w.OccupiedEndAt = w.OccupiedStartAt
	_, err := svc.Acquire(context.Background(), w, 1, 101, 55)
	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestRelease(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	result, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, result.LeaseIDs))
	assert.Empty(t, repo.leases)

	// пустой набор — no-op
	assert.NoError(t, svc.Release(ctx, nil))
}

func TestReleaseByBooking(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	other := testWindow()
	other.OccupiedStartAt = other.OccupiedStartAt.Add(2 * time.Hour)
	other.OccupiedEndAt = other.OccupiedEndAt.Add(2 * time.Hour)
	_, err = svc.Acquire(ctx, other, 1, 202, 56)
	require.NoError(t, err)

	// удаляются все лизы бронирования, чужие не затрагиваются
	require.NoError(t, svc.ReleaseByBooking(ctx, 101))
	for _, l := range repo.leases {
		assert.Equal(t, int64(202), l.BookingID)
	}
	assert.NotEmpty(t, repo.leases)
}

func TestSwap_MovesToOverlappingWindow(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	old, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	// перенос на 10:30-11:30 при capacity=1: без release-first
	// собственные лизы 10:30-11:00 блокировали бы захват
	moved := testWindow()
	moved.OccupiedStartAt = moved.OccupiedStartAt.Add(30 * time.Minute)
	moved.OccupiedEndAt = moved.OccupiedEndAt.Add(30 * time.Minute)

	result, err := svc.Swap(ctx, old.LeaseIDs, moved, 1, 101, 55)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SeatIndex)
	assert.Len(t, repo.leases, 12)

	for _, id := range result.LeaseIDs {
		assert.Contains(t, repo.leases, id)
	}
	for _, id := range old.LeaseIDs {
		if !contains(result.LeaseIDs, id) {
			assert.NotContains(t, repo.leases, id)
		}
	}
}

func TestSwap_TargetOccupied(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	old, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	// чужое бронирование держит целевое окно
	target := testWindow()
	target.OccupiedStartAt = target.OccupiedStartAt.Add(2 * time.Hour)
	target.OccupiedEndAt = target.OccupiedEndAt.Add(2 * time.Hour)
	_, err = svc.Acquire(ctx, target, 1, 102, 56)
	require.NoError(t, err)

	_, err = svc.Swap(ctx, old.LeaseIDs, target, 1, 101, 55)
	assert.ErrorIs(t, err, ErrNoSeatAvailable)
}

func TestListForDay(t *testing.T) {
	repo := newFakeLeaseRepo()
	svc := NewService(repo, nopLogger{})
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testWindow(), 1, 101, 55)
	require.NoError(t, err)

	leases, err := svc.ListForDay(ctx, 7, 3, "2026-03-10")
	require.NoError(t, err)
	assert.Len(t, leases, 12)

	empty, err := svc.ListForDay(ctx, 7, 3, "2026-03-11")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
