package respond_proposal

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
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/leases"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/ptr"
	"github.com/lumeaapp/LMA-BookingEngine/pkg/txmanager"
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

type fakeSettingsRepo struct {
	settings *domain.BookingSettings
}

func (f *fakeSettingsRepo) GetByProviderID(_ context.Context, providerID int64) (*domain.BookingSettings, error) {
	if f.settings == nil {
		return domain.DefaultBookingSettings(providerID), nil
	}
	return f.settings, nil
}

type fakeLeaseService struct {
	swapErr  error
	swapped  bool
	released []string
	acquired []string
}

func (f *fakeLeaseService) Release(_ context.Context, lockIDs []string) error {
	f.released = append(f.released, lockIDs...)
	return nil
}

func (f *fakeLeaseService) Swap(_ context.Context, oldLockIDs []string, window domain.LeaseWindow, _ int, _, _ int64) (*leases.AcquireResult, error) {
	if f.swapErr != nil {
		return nil, f.swapErr
	}
	f.swapped = true
	f.released = append(f.released, oldLockIDs...)
	f.acquired = window.LeaseIDs(0)
	return &leases.AcquireResult{SeatIndex: 0, LeaseIDs: f.acquired}, nil
}

type fakeCatalogClient struct {
	service *catalogservice.Service
}

func (f *fakeCatalogClient) GetService(_ context.Context, _ int64) (*catalogservice.Service, error) {
	return f.service, nil
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

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// бронирование с открытым предложением провайдера: 14:00 -> 16:00
func proposedBooking() *domain.Booking {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	oldWindow := domain.LeaseWindow{
		ProviderID:      7,
		StaffID:         0,
		Date:            day,
		OccupiedStartAt: day.Add(14 * time.Hour),
		OccupiedEndAt:   day.Add(15 * time.Hour),
	}

	return &domain.Booking{
		ID:                      10,
		ProviderID:              7,
		ServiceID:               21,
		CustomerID:              55,
		Status:                  domain.StatusRescheduleRequested,
		BookingDate:             day,
		StartAt:                 day.Add(14 * time.Hour),
		EndAt:                   day.Add(15 * time.Hour),
		OccupiedStartAt:         day.Add(14 * time.Hour),
		OccupiedEndAt:           day.Add(15 * time.Hour),
		PaymentSettled:          true,
		LockIDs:                 oldWindow.LeaseIDs(0),
		ProposalBy:              ptr.Ptr(domain.ProposalByCompany),
		ProposedStartAt:         ptr.Ptr(day.Add(16 * time.Hour)),
		ProposedEndAt:           ptr.Ptr(day.Add(17 * time.Hour)),
		ProposedOccupiedStartAt: ptr.Ptr(day.Add(16 * time.Hour)),
		ProposedOccupiedEndAt:   ptr.Ptr(day.Add(17 * time.Hour)),
		ReferralStatus:          domain.ReferralNone,
	}
}

type env struct {
	uc      *UseCase
	repo    *fakeBookingRepo
	leases  *fakeLeaseService
	notify  *fakeNotifyClient
	tx      *fakeTxManager
	catalog *fakeCatalogClient
}

func newEnv() *env {
	e := &env{
		repo:    &fakeBookingRepo{booking: proposedBooking()},
		leases:  &fakeLeaseService{},
		notify:  &fakeNotifyClient{},
		tx:      &fakeTxManager{},
		catalog: &fakeCatalogClient{service: &catalogservice.Service{ID: 21, ProviderID: 7, IsActive: true}},
	}
	e.uc = NewUseCase(e.repo, &fakeSettingsRepo{}, e.leases, e.catalog, e.notify, e.tx, nopLogger{})
	return e
}

func TestExecute_AcceptMigratesWindow(t *testing.T) {
	e := newEnv()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionAccept})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, day.Add(16*time.Hour), resp.StartAt)
	assert.Equal(t, day.Add(17*time.Hour), resp.EndAt)

	require.True(t, e.leases.swapped)
	updated := e.repo.updated
	require.NotNil(t, updated)
	assert.Equal(t, e.leases.acquired, updated.LockIDs)
	assert.Nil(t, updated.ProposalBy)
	assert.Nil(t, updated.ProposedStartAt)
	assert.False(t, updated.Remind24hSent)
	assert.False(t, updated.Remind2hSent)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventProposalAccepted, e.notify.events[0].Type)
}

func TestExecute_DeclineCancelsBooking(t *testing.T) {
	e := newEnv()
	old := e.repo.booking.LockIDs

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionDecline})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, old, e.leases.released)

	updated := e.repo.updated
	assert.Empty(t, updated.LockIDs)
	assert.NotNil(t, updated.CancelledAt)
	assert.Nil(t, updated.ProposalBy)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notifyservice.EventProposalDeclined, e.notify.events[0].Type)
}

func TestExecute_ProposedWindowTaken(t *testing.T) {
	e := newEnv()
	e.leases.swapErr = leases.ErrNoSeatAvailable

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionAccept})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, e.repo.updated)
}

func TestExecute_SerializationConflict(t *testing.T) {
	e := newEnv()
	e.tx.err = txmanager.ErrSerializationConflict

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionAccept})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_NoOpenProposal(t *testing.T) {
	e := newEnv()
	e.repo.booking.ProposalBy = nil

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionAccept})
	assert.ErrorIs(t, err, ErrNoProposal)
}

func TestExecute_CustomerProposalIsNotAnswerable(t *testing.T) {
	e := newEnv()
	e.repo.booking.ProposalBy = ptr.Ptr(domain.ProposalByCustomer)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: ActionAccept})
	assert.ErrorIs(t, err, ErrNoProposal)
}

func TestExecute_AccessDenied(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 99, Action: ActionDecline})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_UnknownAction(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 10, UserID: 55, Action: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
