package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/catalogservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/ptr"
)

// fakeTxManager отмечает активную транзакцию, чтобы тесты могли
// проверить, что чтение и запись происходят внутри неё
type fakeTxManager struct {
	active           bool
	serializableUsed bool
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.active = true
	defer func() { f.active = false }()
	return fn(ctx)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.serializableUsed = true
	return f.Do(ctx, fn)
}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.Do(ctx, fn)
}

type fakeBookingRepo struct {
	tx      *fakeTxManager
	booking *domain.Booking

	readInTx   bool
	updateInTx bool
	updated    *domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	f.readInTx = f.tx.active
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) GetByCustomerID(_ context.Context, _ int64, _ []domain.BookingStatus) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) GetWithFilter(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	f.updateInTx = f.tx.active
	stored := *b
	f.updated = &stored
	f.booking = &stored
	return nil
}

func (f *fakeBookingRepo) SetPaymentSettled(_ context.Context, _ int64, _ bool) error {
	return nil
}

type fakeLeaseService struct {
	releasedBookings []int64
}

func (f *fakeLeaseService) ReleaseByBooking(_ context.Context, bookingID int64) error {
	f.releasedBookings = append(f.releasedBookings, bookingID)
	return nil
}

type fakeCatalogClient struct {
	provider *catalogservice.Provider
}

func (f *fakeCatalogClient) GetProvider(_ context.Context, _ int64) (*catalogservice.Provider, error) {
	return f.provider, nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (f *fakeNotifyClient) SendEventAsync(event notifyservice.Event) {
	f.events = append(f.events, event)
}

type stubTime struct{ t time.Time }

func (s stubTime) Now() time.Time { return s.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func settledConfirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:             10,
		ProviderID:     7,
		CustomerID:     55,
		Status:         domain.StatusConfirmed,
		BookingDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartAt:        time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		EndAt:          time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		PaymentSettled: true,
		LockIDs:        []string{"p7:s0:2026-03-10:seat0:b168"},
		ReferralStatus: domain.ReferralNone,
	}
}

type env struct {
	svc    *Service
	repo   *fakeBookingRepo
	leases *fakeLeaseService
	notify *fakeNotifyClient
	tx     *fakeTxManager
	now    time.Time
}

func newEnv(booking *domain.Booking) *env {
	e := &env{
		tx:     &fakeTxManager{},
		leases: &fakeLeaseService{},
		notify: &fakeNotifyClient{},
		now:    time.Date(2026, 3, 10, 13, 50, 0, 0, time.UTC),
	}
	e.repo = &fakeBookingRepo{tx: e.tx, booking: booking}
	e.svc = NewService(
		e.repo,
		e.leases,
		&fakeCatalogClient{provider: &catalogservice.Provider{ID: 7, OwnerID: 77, IsActive: true}},
		e.notify,
		e.tx,
		domain.DefaultPolicyParams(),
		nopLogger{},
	)
	e.svc.timeProvider = stubTime{t: e.now}
	return e
}

func TestGenerateCheckInCode(t *testing.T) {
	e := newEnv(settledConfirmedBooking())

	resp, err := e.svc.GenerateCheckInCode(context.Background(), 10, 77)
	require.NoError(t, err)

	assert.Len(t, resp.Code, 6)
	assert.Equal(t, e.now.Add(15*time.Minute), resp.ExpiresAt)
	assert.NotEmpty(t, resp.QRCodePNG)

	// чтение и запись кода происходят в одной транзакции
	assert.True(t, e.repo.readInTx)
	assert.True(t, e.repo.updateInTx)

	require.NotNil(t, e.repo.updated)
	assert.Equal(t, resp.Code, *e.repo.updated.CheckInCode)
	assert.Equal(t, resp.ExpiresAt, *e.repo.updated.CheckInCodeExpiresAt)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventCheckInRequested, e.notify.events[0].Type)
}

func TestGenerateCheckInCode_NotSettled(t *testing.T) {
	b := settledConfirmedBooking()
	b.PaymentSettled = false
	e := newEnv(b)

	_, err := e.svc.GenerateCheckInCode(context.Background(), 10, 77)
	assert.ErrorIs(t, err, ErrNotSettled)
	assert.Nil(t, e.repo.updated)
}

func TestGenerateCheckInCode_WrongStatus(t *testing.T) {
	b := settledConfirmedBooking()
	b.Status = domain.StatusPending
	e := newEnv(b)

	_, err := e.svc.GenerateCheckInCode(context.Background(), 10, 77)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestConfirmCheckIn(t *testing.T) {
	b := settledConfirmedBooking()
	b.CheckInCode = ptr.Ptr("123456")
	b.CheckInCodeExpiresAt = ptr.Ptr(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	e := newEnv(b)

	resp, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 55, Code: "123456"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCheckedIn), resp.Status)

	// переход статуса выполняется внутри SERIALIZABLE транзакции
	assert.True(t, e.tx.serializableUsed)
	assert.True(t, e.repo.readInTx)
	assert.True(t, e.repo.updateInTx)

	updated := e.repo.updated
	require.NotNil(t, updated)
	assert.Nil(t, updated.CheckInCode)
	assert.Nil(t, updated.CheckInCodeExpiresAt)
	assert.Equal(t, e.now, *updated.CheckedInAt)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventCheckInConfirmed, e.notify.events[0].Type)
}

func TestConfirmCheckIn_CancelledConcurrently(t *testing.T) {
	// отмена успела закоммититься раньше: чтение внутри транзакции видит
	// терминальный статус, и переход отклоняется вместо его перезаписи
	b := settledConfirmedBooking()
	b.Status = domain.StatusCancelled
	b.LockIDs = nil
	b.CheckInCode = ptr.Ptr("123456")
	b.CheckInCodeExpiresAt = ptr.Ptr(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	e := newEnv(b)

	_, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 55, Code: "123456"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	assert.Nil(t, e.repo.updated)
	assert.Equal(t, domain.StatusCancelled, e.repo.booking.Status)
	assert.Empty(t, e.repo.booking.LockIDs)
	assert.Empty(t, e.notify.events)
}

func TestConfirmCheckIn_CodeExpired(t *testing.T) {
	b := settledConfirmedBooking()
	b.CheckInCode = ptr.Ptr("123456")
	b.CheckInCodeExpiresAt = ptr.Ptr(time.Date(2026, 3, 10, 13, 45, 0, 0, time.UTC))
	e := newEnv(b) // now = 13:50, код истёк в 13:45

	_, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 55, Code: "123456"})
	assert.ErrorIs(t, err, ErrCodeExpired)
	assert.Nil(t, e.repo.updated)
}

func TestConfirmCheckIn_CodeMismatch(t *testing.T) {
	b := settledConfirmedBooking()
	b.CheckInCode = ptr.Ptr("123456")
	b.CheckInCodeExpiresAt = ptr.Ptr(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	e := newEnv(b)

	_, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 55, Code: "654321"})
	assert.ErrorIs(t, err, ErrCodeMismatch)
}

func TestConfirmCheckIn_NoCodeIssued(t *testing.T) {
	e := newEnv(settledConfirmedBooking())

	_, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 55, Code: "123456"})
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestConfirmCheckIn_AccessDenied(t *testing.T) {
	b := settledConfirmedBooking()
	b.CheckInCode = ptr.Ptr("123456")
	b.CheckInCodeExpiresAt = ptr.Ptr(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	e := newEnv(b)

	_, err := e.svc.ConfirmCheckIn(context.Background(), 10, &models.ConfirmCheckInRequest{CustomerID: 99, Code: "123456"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRejectCheckIn(t *testing.T) {
	e := newEnv(settledConfirmedBooking())

	err := e.svc.RejectCheckIn(context.Background(), 10, &models.RejectCheckInRequest{CustomerID: 55, Reason: "not coming"})
	require.NoError(t, err)

	// статус не меняется, уходит отчёт об инциденте
	assert.Nil(t, e.repo.updated)
	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventCheckInRejected, e.notify.events[0].Type)
	assert.NotEmpty(t, e.notify.events[0].EventID)
	assert.Equal(t, "not coming", e.notify.events[0].Payload["reason"])
}
