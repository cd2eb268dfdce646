package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	settingsRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/settings"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/ptr"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/txmanager"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/types"
)

// --- фейки ---

type fakeBookingRepo struct {
	nextID      int64
	bookings    map[int64]*domain.Booking
	activeCount int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	copied := *b
	copied.ID = f.nextID
	f.nextID++
	f.bookings[copied.ID] = &copied
	return &copied, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	stored := *b
	f.bookings[b.ID] = &stored
	return nil
}

func (f *fakeBookingRepo) CountActiveByCustomerAndDate(_ context.Context, _, _ int64, _ time.Time) (int, error) {
	return f.activeCount, nil
}

type fakeSettingsRepo struct {
	settings *domain.BookingSettings
}

func (f *fakeSettingsRepo) GetByProviderID(_ context.Context, providerID int64) (*domain.BookingSettings, error) {
	if f.settings == nil {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return f.settings, nil
}

type fakeBlockRepo struct {
	blocks []domain.BookingBlock
}

func (f *fakeBlockRepo) ListByProviderAndRange(_ context.Context, _ int64, _, _ time.Time) ([]domain.BookingBlock, error) {
	return f.blocks, nil
}

type fakeLeaseService struct {
	dayLeases  []domain.SeatLease
	acquireErr error
	acquired   []string
}

func (f *fakeLeaseService) Acquire(_ context.Context, window domain.LeaseWindow, _ int, _, _ int64) (*leases.AcquireResult, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	ids := window.LeaseIDs(0)
	f.acquired = ids
	return &leases.AcquireResult{SeatIndex: 0, LeaseIDs: ids}, nil
}

func (f *fakeLeaseService) ListForDay(_ context.Context, _, _ int64, _ string) ([]domain.SeatLease, error) {
	return f.dayLeases, nil
}

type fakeCatalogClient struct {
	provider *catalogservice.Provider
	service  *catalogservice.Service
	staff    *catalogservice.StaffMember
}

func (f *fakeCatalogClient) GetProvider(_ context.Context, _ int64) (*catalogservice.Provider, error) {
	return f.provider, nil
}

func (f *fakeCatalogClient) GetService(_ context.Context, _ int64) (*catalogservice.Service, error) {
	return f.service, nil
}

func (f *fakeCatalogClient) GetStaffMember(_ context.Context, _, _ int64) (*catalogservice.StaffMember, error) {
	return f.staff, nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (f *fakeNotifyClient) SendEventAsync(event notifyservice.Event) {
	f.events = append(f.events, event)
}

type fakeTxManager struct {
	err error
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type stubTime struct{ t time.Time }

func (s stubTime) Now() time.Time { return s.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- окружение ---

type env struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	settings *fakeSettingsRepo
	blocks   *fakeBlockRepo
	leases   *fakeLeaseService
	catalog  *fakeCatalogClient
	notify   *fakeNotifyClient
	tx       *fakeTxManager
	now      time.Time
}

// 2026-03-10 — вторник
func openSettings() *domain.BookingSettings {
	return &domain.BookingSettings{
		ProviderID:      7,
		Enabled:         true,
		IntervalMinutes: 30,
		DefaultCapacity: 1,
		Week: domain.WeekSchedule{
			Tuesday: domain.DaySchedule{
				Open:   true,
				Ranges: []domain.TimeRange{{StartMin: 9 * 60, EndMin: 18 * 60}},
			},
		},
	}
}

func newEnv() *env {
	e := &env{
		bookings: newFakeBookingRepo(),
		settings: &fakeSettingsRepo{settings: openSettings()},
		blocks:   &fakeBlockRepo{},
		leases:   &fakeLeaseService{},
		catalog: &fakeCatalogClient{
			provider: &catalogservice.Provider{ID: 7, IsActive: true, OwnerID: 900},
			service: &catalogservice.Service{
				ID:              21,
				ProviderID:      7,
				Name:            "Haircut",
				DurationMinutes: 60,
				Price:           50,
				IsActive:        true,
			},
		},
		notify: &fakeNotifyClient{},
		tx:     &fakeTxManager{},
		now:    time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
	}
	e.uc = NewUseCase(e.bookings, e.settings, e.blocks, e.leases, e.catalog, e.notify, e.tx, domain.DefaultPolicyParams(), nopLogger{})
	e.uc.timeProvider = stubTime{t: e.now}
	return e
}

func validRequest() *Request {
	return &Request{
		CustomerID:    55,
		ProviderID:    7,
		ServiceID:     21,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     types.TimeString("10:00"),
		CustomerName:  "Anna",
		CustomerPhone: "+4915112345678",
	}
}

// --- тесты ---

func TestExecute_Success(t *testing.T) {
	e := newEnv()

	resp, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, 0, resp.SeatIndex)
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, 50.0, resp.ServicePrice)

	stored := e.bookings.bookings[1]
	require.NotNil(t, stored)
	assert.Equal(t, e.leases.acquired, stored.LockIDs)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), stored.StartAt)
	assert.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), stored.EndAt)

	// напоминания: старт больше чем через 24 часа — оба назначены
	require.NotNil(t, stored.RemindAt24h)
	require.NotNil(t, stored.RemindAt2h)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventBookingCreated, e.notify.events[0].Type)
	assert.Equal(t, int64(1), e.notify.events[0].BookingID)
}

func TestExecute_AutoConfirm(t *testing.T) {
	e := newEnv()
	e.settings.settings.AutoConfirm = true

	resp, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
}

func TestExecute_NoSettingsMeansDisabled(t *testing.T) {
	e := newEnv()
	e.settings.settings = nil

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBookingDisabled)
}

func TestExecute_BookingDisabled(t *testing.T) {
	e := newEnv()
	e.settings.settings.Enabled = false

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBookingDisabled)
}

func TestExecute_ProviderClosed(t *testing.T) {
	e := newEnv()
	req := validRequest()
	req.Date = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC) // среда закрыта

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrProviderClosed)
}

func TestExecute_SlotOffGrid(t *testing.T) {
	e := newEnv()
	req := validRequest()
	req.StartTime = types.TimeString("10:10")

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_SlotCoveredByBlock(t *testing.T) {
	e := newEnv()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	e.blocks.blocks = []domain.BookingBlock{{
		ProviderID: 7,
		StartAt:    day.Add(10 * time.Hour),
		EndAt:      day.Add(11 * time.Hour),
	}}

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_SameDayDuplicate(t *testing.T) {
	e := newEnv()
	e.bookings.activeCount = 1

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSameDayDuplicate)

	// явное подтверждение снимает запрет
	req := validRequest()
	req.AllowSameDayDuplicate = true
	_, err = e.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_SeatExhausted(t *testing.T) {
	e := newEnv()
	e.leases.acquireErr = leases.ErrNoSeatAvailable

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSeatExhausted)
}

func TestExecute_SerializationConflict(t *testing.T) {
	e := newEnv()
	e.tx.err = txmanager.ErrSerializationConflict

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSeatExhausted)
}

func TestExecute_InactiveProvider(t *testing.T) {
	e := newEnv()
	e.catalog.provider.IsActive = false

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestExecute_ServiceOfAnotherProvider(t *testing.T) {
	e := newEnv()
	e.catalog.service.ProviderID = 8

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_PastDate(t *testing.T) {
	e := newEnv()
	req := validRequest()
	req.Date = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_InvalidInput(t *testing.T) {
	e := newEnv()

	req := validRequest()
	req.CustomerID = 0
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.StartTime = types.TimeString("25:99")
	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ReferralCommissionClamped(t *testing.T) {
	e := newEnv()
	e.catalog.service.ReferralPercent = ptr.Ptr(50.0)

	req := validRequest()
	req.ReferralPostID = ptr.Ptr("post-abc")
	req.ReferralCreatorID = ptr.Ptr(int64(77))

	resp, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// объявленный процент выше потолка политики — зажимается до 30
	assert.Equal(t, 30.0, resp.ReferralPercent)
	assert.Equal(t, 15.0, resp.ReferralAmount)

	stored := e.bookings.bookings[resp.ID]
	assert.Equal(t, domain.ReferralPending, stored.ReferralStatus)
	assert.Equal(t, "post-abc", *stored.ReferralPostID)
}

func TestExecute_SameDayLeadHidesImminentSlot(t *testing.T) {
	e := newEnv()
	// сегодня 10 марта, 09:50: слот 10:00 уже недоступен из-за упреждения
	e.now = time.Date(2026, 3, 10, 9, 50, 0, 0, time.UTC)
	e.uc.timeProvider = stubTime{t: e.now}

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	req := validRequest()
	req.StartTime = types.TimeString("10:30")
	_, err = e.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}
