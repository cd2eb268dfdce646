package cancel_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	bookingRepo "github.com/lumeaapp/LMA-BookingEngine/internal/infra/storage/booking"
	"github.com/lumeaapp/LMA-BookingEngine/internal/integrations/notifyservice"
)

type fakeBookingRepo struct {
	booking *domain.Booking
	updated *domain.Booking
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	stored := *b
	f.updated = &stored
	return nil
}

type fakeLeaseService struct {
	released []string
}

func (f *fakeLeaseService) Release(_ context.Context, lockIDs []string) error {
	f.released = append(f.released, lockIDs...)
	return nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (f *fakeNotifyClient) SendEventAsync(event notifyservice.Event) {
	f.events = append(f.events, event)
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubTime struct{ t time.Time }

func (s stubTime) Now() time.Time { return s.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:             10,
		ProviderID:     7,
		CustomerID:     55,
		ServicePrice:   50,
		Status:         domain.StatusConfirmed,
		StartAt:        time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		EndAt:          time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		PaymentSettled: true,
		LockIDs:        []string{"p7:s0:2026-03-10:seat0:b168"},
		ReferralStatus: domain.ReferralNone,
	}
}

func newUseCase(repo *fakeBookingRepo, leaseSvc *fakeLeaseService, notify *fakeNotifyClient, now time.Time) *UseCase {
	return NewUseCase(repo, leaseSvc, notify, fakeTxManager{}, stubTime{t: now}, domain.DefaultPolicyParams(), nopLogger{})
}

func TestExecute_LateCancellationFee(t *testing.T) {
	repo := &fakeBookingRepo{booking: confirmedBooking()}
	leaseSvc := &fakeLeaseService{}
	notify := &fakeNotifyClient{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) // за 2 часа до начала

	uc := newUseCase(repo, leaseSvc, notify, now)
	resp, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, 15.0, resp.CancellationFeePercent)
	assert.Equal(t, 7.5, resp.CancellationFeeAmount)
	assert.Equal(t, now, resp.CancelledAt)

	assert.Equal(t, []string{"p7:s0:2026-03-10:seat0:b168"}, leaseSvc.released)
	require.NotNil(t, repo.updated)
	assert.Empty(t, repo.updated.LockIDs)

	require.Len(t, notify.events, 1)
	assert.Equal(t, notifyservice.EventBookingCancelled, notify.events[0].Type)
	assert.Equal(t, 7.5, notify.events[0].Payload["fee_amount"])
}

func TestExecute_EarlyCancellationIsFree(t *testing.T) {
	repo := &fakeBookingRepo{booking: confirmedBooking()}
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, now)
	resp, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	require.NoError(t, err)

	assert.Zero(t, resp.CancellationFeePercent)
	assert.Zero(t, resp.CancellationFeeAmount)
}

func TestExecute_UnsettledBookingHasNoFee(t *testing.T) {
	b := confirmedBooking()
	b.PaymentSettled = false
	repo := &fakeBookingRepo{booking: b}
	now := time.Date(2026, 3, 10, 13, 30, 0, 0, time.UTC)

	uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, now)
	resp, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	require.NoError(t, err)

	assert.Zero(t, resp.CancellationFeeAmount)
}

func TestExecute_VoidsPendingReferral(t *testing.T) {
	b := confirmedBooking()
	b.ReferralStatus = domain.ReferralPending
	repo := &fakeBookingRepo{booking: b}
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, now)
	_, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	require.NoError(t, err)

	assert.Equal(t, domain.ReferralVoided, repo.updated.ReferralStatus)
}

func TestExecute_ClearsOpenProposal(t *testing.T) {
	b := confirmedBooking()
	b.Status = domain.StatusPending
	party := domain.ProposalByCompany
	b.ProposalBy = &party
	repo := &fakeBookingRepo{booking: b}
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, now)
	_, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	require.NoError(t, err)

	assert.Nil(t, repo.updated.ProposalBy)
}

func TestExecute_NotFound(t *testing.T) {
	uc := newUseCase(&fakeBookingRepo{}, &fakeLeaseService{}, &fakeNotifyClient{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_AccessDenied(t *testing.T) {
	repo := &fakeBookingRepo{booking: confirmedBooking()}
	uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 56})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_TerminalStatusCannotCancel(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCancelled, domain.StatusCheckedIn} {
		b := confirmedBooking()
		b.Status = status
		repo := &fakeBookingRepo{booking: b}
		uc := newUseCase(repo, &fakeLeaseService{}, &fakeNotifyClient{}, time.Now())

		_, err := uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55})
		assert.ErrorIs(t, err, ErrCannotCancel, "status=%s", status)
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newUseCase(&fakeBookingRepo{}, &fakeLeaseService{}, &fakeNotifyClient{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0, UserID: 55})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
